package main

import "testing"

func newTestCPU() (*CPU, *Bus) {
	bios := NewMemorySegment(biosSize, false) // writable in tests so we can place code
	irq := NewInterruptController()
	gpu := NewGPU(NewNullRenderer())
	bus := NewBus(bios, gpu, irq)
	return NewCPU(bus, irq), bus
}

// loadProgram writes 32-bit words starting at the BIOS reset vector.
func loadProgram(bus *Bus, words ...uint32) {
	for i, w := range words {
		bus.Write32(biosResetVector+uint32(i*4), w)
	}
}

func rType(funct, rs, rt, rd, shamt uint32) uint32 {
	return (0 << 26) | (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func iType(opcode, rs, rt, imm uint32) uint32 {
	return (opcode << 26) | (rs << 21) | (rt << 16) | (imm & 0xFFFF)
}

func TestSingleLUI(t *testing.T) {
	cpu, bus := newTestCPU()
	loadProgram(bus, iType(0x0F, 0, 1, 0x1234)) // LUI R1, 0x1234
	cpu.Step()

	if cpu.R[1] != 0x12340000 {
		t.Fatalf("R1 = %#x, want 0x12340000", cpu.R[1])
	}
	if cpu.pc != biosResetVector+4 {
		t.Fatalf("pc = %#x, want %#x", cpu.pc, biosResetVector+4)
	}
}

func TestLoadDelaySlotVisibility(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.R[1] = 5
	cpu.RNext[1] = 5
	bus.Write32(0, 0xDEADBEEF)

	loadProgram(bus,
		iType(0x23, 0, 1, 0),        // LW R1, 0(R0)
		rType(0x25, 1, 0, 2, 0),     // OR R2, R1, R0
		rType(0x25, 1, 0, 3, 0),     // OR R3, R1, R0
	)

	cpu.Step() // LW
	if cpu.R[1] != 5 {
		t.Fatalf("after LW, R1 = %#x, want 5 (not yet retired)", cpu.R[1])
	}

	cpu.Step() // OR R2,R1,R0 - reads the stale R1
	if cpu.R[2] != 5 {
		t.Fatalf("R2 = %#x, want 5 (old R1 visible in the delay slot)", cpu.R[2])
	}
	if cpu.R[1] != 0xDEADBEEF {
		t.Fatalf("R1 = %#x, want 0xDEADBEEF (load retired)", cpu.R[1])
	}

	cpu.Step() // OR R3,R1,R0 - reads the retired value
	if cpu.R[3] != 0xDEADBEEF {
		t.Fatalf("R3 = %#x, want 0xDEADBEEF", cpu.R[3])
	}
}

func TestBranchDelaySlotExecutesBeforeTarget(t *testing.T) {
	cpu, bus := newTestCPU()
	loadProgram(bus,
		iType(0x04, 0, 0, 2),     // BEQ R0,R0,+2
		iType(0x09, 0, 1, 7),     // ADDIU R1,R0,7  (delay slot)
		iType(0x09, 0, 1, 9),     // ADDIU R1,R0,9  (skipped)
	)

	cpu.Step() // BEQ
	cpu.Step() // delay slot: ADDIU R1,7
	if cpu.R[1] != 7 {
		t.Fatalf("R1 = %d, want 7 after the delay slot runs", cpu.R[1])
	}
	cpu.Step() // whatever lies past the branch target, not the second ADDIU
	if cpu.R[1] != 7 {
		t.Fatalf("R1 = %d, want 7 (second ADDIU must never execute)", cpu.R[1])
	}
}

func TestSyscallInDelaySlotStacksAdjustedEPC(t *testing.T) {
	cpu, bus := newTestCPU()
	loadProgram(bus,
		iType(0x04, 0, 0, 1),          // BEQ R0,R0,+1
		rType(0x0C, 0, 0, 0, 0),       // SYSCALL (delay slot)
	)

	cpu.Step() // BEQ: sets branching
	cpu.Step() // delay slot executes SYSCALL, which must fault

	if cpu.cause&(1<<31) == 0 {
		t.Fatal("CAUSE branch-delay bit not set for an exception raised in a delay slot")
	}
	wantEPC := biosResetVector // the branch instruction, not the delay slot
	if cpu.epc != wantEPC {
		t.Fatalf("EPC = %#x, want %#x (delay-slot-adjusted)", cpu.epc, wantEPC)
	}
	if (cpu.cause>>2)&0x1F != uint32(ExcSyscall) {
		t.Fatalf("CAUSE exception code = %d, want Syscall", (cpu.cause>>2)&0x1F)
	}
}

func TestADDIOverflowRaisesExceptionAndSkipsWriteback(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.R[1] = 0x7FFFFFFF
	cpu.RNext[1] = 0x7FFFFFFF
	loadProgram(bus, iType(0x08, 1, 2, 1)) // ADDI R2,R1,1 -> overflow

	cpu.Step()

	if (cpu.cause>>2)&0x1F != uint32(ExcOverflow) {
		t.Fatalf("expected Overflow exception, CAUSE code = %d", (cpu.cause>>2)&0x1F)
	}
	if cpu.R[2] != 0 {
		t.Fatalf("R2 = %#x, destination must be untouched on overflow", cpu.R[2])
	}
}

func TestDivisionByZeroCornerCase(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.R[1] = 0xFFFFFFFF // -1
	cpu.RNext[1] = 0xFFFFFFFF
	loadProgram(bus, rType(0x1A, 1, 0, 0, 0)) // DIV R1,R0 (R0=0 divisor)

	cpu.Step()

	if cpu.LO != 1 {
		t.Fatalf("LO = %#x, want 1 (negative dividend / 0)", cpu.LO)
	}
	if cpu.HI != 0xFFFFFFFF {
		t.Fatalf("HI = %#x, want dividend", cpu.HI)
	}
}

func TestMisalignedWordLoadFaults(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.R[1] = 1 // base register holds an odd address
	cpu.RNext[1] = 1
	loadProgram(bus, iType(0x23, 1, 2, 0)) // LW R2, 0(R1) -> addr 1, misaligned

	cpu.Step()

	if (cpu.cause>>2)&0x1F != uint32(ExcLoadAddress) {
		t.Fatalf("expected LoadAddress exception, CAUSE code = %d", (cpu.cause>>2)&0x1F)
	}
	if cpu.badvaddr != 1 {
		t.Fatalf("BADVADDR = %#x, want 1", cpu.badvaddr)
	}
}

func TestExternalInterruptEPCNamesTheNotYetFetchedInstruction(t *testing.T) {
	cpu, bus := newTestCPU()
	loadProgram(bus,
		rType(0x00, 0, 0, 0, 0), // SLL R0,R0,0 (nop)
		rType(0x00, 0, 0, 0, 0), // SLL R0,R0,0 (nop)
	)
	cpu.status = 1 // IEc enabled
	cpu.irq.WriteMask(1 << uint(IRQVBlank))

	cpu.Step() // executes the first nop; currentPC becomes biosResetVector

	cpu.irq.Request(IRQVBlank)
	wantEPC := cpu.pc // the instruction this Step call is about to preempt
	if wantEPC != biosResetVector+4 {
		t.Fatalf("test setup: cpu.pc = %#x, want %#x", wantEPC, biosResetVector+4)
	}

	cpu.Step() // must raise ExternalInterrupt before fetching at cpu.pc

	if (cpu.cause>>2)&0x1F != uint32(ExcExternalInterrupt) {
		t.Fatalf("CAUSE exception code = %d, want ExternalInterrupt", (cpu.cause>>2)&0x1F)
	}
	if cpu.epc != wantEPC {
		t.Fatalf("EPC = %#x, want %#x (the not-yet-fetched instruction, not the one that already retired)", cpu.epc, wantEPC)
	}
}

func TestRFEReversesOnlyTheLowFourStatusBits(t *testing.T) {
	cpu, _ := newTestCPU()
	cpu.status = 0x3F // all three KU/IE pairs set
	cpu.raiseException(ExcBreak, cpu.currentPC)
	statusAfterEntry := cpu.status

	cpu.status = statusAfterEntry
	// RFE: COP0 opcode with RS=0x10, funct=0x10
	rfe := (0x10 << 26) | (0x10 << 21) | 0x10
	cpu.execute(Instruction(rfe))

	want := (statusAfterEntry &^ 0xF) | ((statusAfterEntry >> 2) & 0xF)
	if cpu.status != want {
		t.Fatalf("status after RFE = %#x, want %#x", cpu.status, want)
	}
}
