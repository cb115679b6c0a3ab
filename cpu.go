// cpu.go - MIPS R3000A-class interpreter: decode, load-delay, branch-delay,
// COP0 precise exceptions (§4.6)

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

Register visibility is a shadow file, not a naive write-through array: every
instruction's effects land in R_next, and R only catches up at the end of
the step (§4.6, §9). A pending load is a one-slot tuple staged for
installation at the *start* of the following instruction, which is what
produces the documented one-slot load-delay.
*/

package main

import "fmt"

// ExceptionKind is the closed enumeration of COP0 exception causes (§4.6).
type ExceptionKind uint32

const (
	ExcExternalInterrupt ExceptionKind = 0
	ExcLoadAddress        ExceptionKind = 4
	ExcStoreAddress       ExceptionKind = 5
	ExcSyscall            ExceptionKind = 8
	ExcBreak              ExceptionKind = 9
	ExcIllegalInstruction ExceptionKind = 10
	ExcCoprocessorError   ExceptionKind = 11
	ExcOverflow           ExceptionKind = 12
)

type pendingLoad struct {
	reg    uint32
	value  uint32
	active bool
}

// CPU is the MIPS R3000A-class interpreter core described in §3/§4.6.
type CPU struct {
	pc, nextPC, currentPC uint32

	R     [32]uint32
	RNext [32]uint32

	HI, LO uint32

	pending         pendingLoad
	previousPending pendingLoad

	branching   bool
	inDelaySlot bool

	// COP0
	status   uint32
	cause    uint32
	epc      uint32
	badvaddr uint32

	bus *Bus
	irq *InterruptController

	running bool

	breakpoints      map[uint32]bool
	readBreakpoints  map[uint32]bool
	writeBreakpoints map[uint32]bool
	dataBreakHit     bool

	exe         *ExeImage
	exeConsumed bool
}

const biosResetVector = 0xBFC00000

func NewCPU(bus *Bus, irq *InterruptController) *CPU {
	c := &CPU{
		bus:              bus,
		irq:              irq,
		breakpoints:      make(map[uint32]bool),
		readBreakpoints:  make(map[uint32]bool),
		writeBreakpoints: make(map[uint32]bool),
	}
	c.Reset()
	return c
}

func (c *CPU) Reset() {
	c.pc = biosResetVector
	c.nextPC = biosResetVector + 4
	c.currentPC = biosResetVector
	for i := range c.R {
		c.R[i] = 0
		c.RNext[i] = 0
	}
	c.HI, c.LO = 0, 0
	c.pending = pendingLoad{}
	c.previousPending = pendingLoad{}
	c.branching = false
	c.inDelaySlot = false
	c.status = 0
	c.cause = 0
	c.epc = 0
	c.badvaddr = 0
	c.running = true
}

// AttachEXE registers a loaded executable image for the sideload hook
// (§4.6). It has no effect until PC reaches the BIOS shell's main entry.
func (c *CPU) AttachEXE(exe *ExeImage) {
	c.exe = exe
	c.exeConsumed = false
}

func (c *CPU) setReg(reg, val uint32) {
	if reg != 0 {
		c.RNext[reg] = val
	}
}

// issueLoad stages a one-slot pending load, applying the double-load hazard
// cancellation when this load retargets the register an unretired load was
// already staged for (§4.6).
func (c *CPU) issueLoad(reg, value uint32) {
	if c.previousPending.active && c.previousPending.reg == reg {
		if reg != 0 {
			c.RNext[reg] = c.R[reg]
		}
	}
	c.pending = pendingLoad{reg: reg, value: value, active: true}
}

const exeSideloadEntry = 0x80030000

// Step advances the machine by exactly one instruction, in the order fixed
// by §5: retire the pending load, latch the branch-delay view, poll
// interrupts, perform the EXE sideload hook, fetch/decode/execute, publish
// R_next, evaluate breakpoints. It returns false when a breakpoint should
// stop the shell's run loop.
func (c *CPU) Step() bool {
	// 1. retire the pending load into the shadow register file.
	c.previousPending = pendingLoad{}
	if c.pending.active {
		if c.pending.reg != 0 {
			c.RNext[c.pending.reg] = c.pending.value
		}
		c.previousPending = c.pending
		c.pending = pendingLoad{}
	}

	// 2. latch branch-delay.
	c.inDelaySlot = c.branching
	c.branching = false

	// 3. poll interrupts. This preempts the instruction about to be fetched
	// at c.pc, not the one that just finished at c.currentPC - the fetch
	// step below hasn't run yet this call, so c.currentPC still names last
	// step's instruction.
	if c.status&1 != 0 && c.irq.Pending() {
		c.raiseException(ExcExternalInterrupt, c.pc)
	}

	// 4. EXE sideload hook.
	if c.exe != nil && !c.exeConsumed && c.pc == exeSideloadEntry {
		c.applyEXESideload()
	}

	// 5. fetch.
	c.currentPC = c.pc
	c.pc = c.nextPC
	c.nextPC = c.pc + 4

	if c.currentPC%4 != 0 {
		c.raiseAddressException(ExcLoadAddress, c.currentPC)
	} else {
		instr := Instruction(c.bus.Read32(c.currentPC))
		c.execute(instr)
	}

	// 7. publish R_next to R.
	c.RNext[0] = 0
	c.R = c.RNext

	return c.evaluateBreakpoints()
}

func (c *CPU) applyEXESideload() {
	c.exeConsumed = true
	exe := c.exe
	ram := c.bus.RAM()
	copy(ram.Bytes()[exe.Destination&0x1FFFFF:], exe.Payload)
	if exe.MemfillSize > 0 {
		base := exe.MemfillAddress & 0x1FFFFF
		buf := ram.Bytes()
		for i := uint32(0); i < exe.MemfillSize; i++ {
			buf[base+i] = 0
		}
	}
	c.setReg(28, exe.InitialGP)
	if exe.StackBase != 0 {
		c.setReg(29, exe.StackBase)
		c.setReg(30, exe.StackBase)
	}
	c.R[28] = exe.InitialGP
	if exe.StackBase != 0 {
		c.R[29] = exe.StackBase
		c.R[30] = exe.StackBase
	}
	c.nextPC = exe.EntryPC
}

func (c *CPU) evaluateBreakpoints() bool {
	if c.breakpoints[c.pc] {
		return false
	}
	if c.dataBreakHit {
		c.dataBreakHit = false
		return false
	}
	return c.running
}

// ---------------------------------------------------------------- decode

func (c *CPU) execute(instr Instruction) {
	switch instr.Opcode() {
	case 0x00:
		c.executeSpecial(instr)
	case 0x01:
		c.executeRegimm(instr)
	case 0x02:
		c.opJ(instr)
	case 0x03:
		c.opJAL(instr)
	case 0x04:
		c.opBranch(instr, c.R[instr.Rs()] == c.R[instr.Rt()])
	case 0x05:
		c.opBranch(instr, c.R[instr.Rs()] != c.R[instr.Rt()])
	case 0x06:
		c.opBranch(instr, int32(c.R[instr.Rs()]) <= 0)
	case 0x07:
		c.opBranch(instr, int32(c.R[instr.Rs()]) > 0)
	case 0x08:
		c.opADDI(instr)
	case 0x09:
		c.setReg(instr.Rt(), c.R[instr.Rs()]+instr.ImmSE16())
	case 0x0A:
		var v uint32
		if int32(c.R[instr.Rs()]) < int32(instr.ImmSE16()) {
			v = 1
		}
		c.setReg(instr.Rt(), v)
	case 0x0B:
		var v uint32
		if c.R[instr.Rs()] < instr.ImmSE16() {
			v = 1
		}
		c.setReg(instr.Rt(), v)
	case 0x0C:
		c.setReg(instr.Rt(), c.R[instr.Rs()]&instr.Imm16())
	case 0x0D:
		c.setReg(instr.Rt(), c.R[instr.Rs()]|instr.Imm16())
	case 0x0E:
		c.setReg(instr.Rt(), c.R[instr.Rs()]^instr.Imm16())
	case 0x0F:
		c.setReg(instr.Rt(), instr.Imm16()<<16)
	case 0x10:
		c.executeCOP0(instr)
	case 0x11, 0x12, 0x13:
		c.raiseException(ExcCoprocessorError, c.currentPC)
	case 0x20:
		c.opLoad(instr, Width8, true)
	case 0x21:
		c.opLoad(instr, Width16, true)
	case 0x22:
		c.opLWL(instr)
	case 0x23:
		c.opLoad(instr, Width32, true)
	case 0x24:
		c.opLoad(instr, Width8, false)
	case 0x25:
		c.opLoad(instr, Width16, false)
	case 0x26:
		c.opLWR(instr)
	case 0x28:
		c.opStore(instr, Width8)
	case 0x29:
		c.opStore(instr, Width16)
	case 0x2A:
		c.opSWL(instr)
	case 0x2B:
		c.opStore(instr, Width32)
	case 0x2E:
		c.opSWR(instr)
	default:
		c.raiseException(ExcIllegalInstruction, c.currentPC)
	}
}

func (c *CPU) executeSpecial(instr Instruction) {
	switch instr.Funct() {
	case 0x00:
		c.setReg(instr.Rd(), c.R[instr.Rt()]<<instr.Shamt())
	case 0x02:
		c.setReg(instr.Rd(), c.R[instr.Rt()]>>instr.Shamt())
	case 0x03:
		c.setReg(instr.Rd(), uint32(int32(c.R[instr.Rt()])>>instr.Shamt()))
	case 0x04:
		c.setReg(instr.Rd(), c.R[instr.Rt()]<<(c.R[instr.Rs()]&0x1F))
	case 0x06:
		c.setReg(instr.Rd(), c.R[instr.Rt()]>>(c.R[instr.Rs()]&0x1F))
	case 0x07:
		c.setReg(instr.Rd(), uint32(int32(c.R[instr.Rt()])>>(c.R[instr.Rs()]&0x1F)))
	case 0x08:
		c.opJR(instr)
	case 0x09:
		c.opJALR(instr)
	case 0x0C:
		c.raiseException(ExcSyscall, c.currentPC)
	case 0x0D:
		c.raiseException(ExcBreak, c.currentPC)
	case 0x10:
		c.setReg(instr.Rd(), c.HI)
	case 0x11:
		c.HI = c.R[instr.Rs()]
	case 0x12:
		c.setReg(instr.Rd(), c.LO)
	case 0x13:
		c.LO = c.R[instr.Rs()]
	case 0x18:
		c.opMULT(instr)
	case 0x19:
		c.opMULTU(instr)
	case 0x1A:
		c.opDIV(instr)
	case 0x1B:
		c.opDIVU(instr)
	case 0x20:
		c.opADD(instr)
	case 0x21:
		c.setReg(instr.Rd(), c.R[instr.Rs()]+c.R[instr.Rt()])
	case 0x22:
		c.opSUB(instr)
	case 0x23:
		c.setReg(instr.Rd(), c.R[instr.Rs()]-c.R[instr.Rt()])
	case 0x24:
		c.setReg(instr.Rd(), c.R[instr.Rs()]&c.R[instr.Rt()])
	case 0x25:
		c.setReg(instr.Rd(), c.R[instr.Rs()]|c.R[instr.Rt()])
	case 0x26:
		c.setReg(instr.Rd(), c.R[instr.Rs()]^c.R[instr.Rt()])
	case 0x27:
		c.setReg(instr.Rd(), ^(c.R[instr.Rs()] | c.R[instr.Rt()]))
	case 0x2A:
		var v uint32
		if int32(c.R[instr.Rs()]) < int32(c.R[instr.Rt()]) {
			v = 1
		}
		c.setReg(instr.Rd(), v)
	case 0x2B:
		var v uint32
		if c.R[instr.Rs()] < c.R[instr.Rt()] {
			v = 1
		}
		c.setReg(instr.Rd(), v)
	default:
		c.raiseException(ExcIllegalInstruction, c.currentPC)
	}
}

// executeRegimm handles BLTZ/BGEZ/BLTZAL/BGEZAL, decoded by rt's low bit
// for predicate and rt&0b11110==0b10000 for link (§4.6).
func (c *CPU) executeRegimm(instr Instruction) {
	rt := instr.Rt()
	negative := int32(c.R[instr.Rs()]) < 0
	taken := negative
	if rt&1 != 0 {
		taken = !negative
	}
	link := rt&0x1E == 0x10
	if link {
		c.setReg(31, c.nextPC)
	}
	c.opBranch(instr, taken)
}

func (c *CPU) opBranch(instr Instruction, taken bool) {
	if taken {
		c.nextPC = c.currentPC + 4 + instr.ImmSE16()<<2
		c.branching = true
	}
}

func (c *CPU) opJ(instr Instruction) {
	target := (c.nextPC & 0xF0000000) | (instr.Imm26() << 2)
	c.jumpTo(target)
}

func (c *CPU) opJAL(instr Instruction) {
	c.setReg(31, c.nextPC)
	target := (c.nextPC & 0xF0000000) | (instr.Imm26() << 2)
	c.jumpTo(target)
}

func (c *CPU) opJR(instr Instruction) {
	c.jumpTo(c.R[instr.Rs()])
}

func (c *CPU) opJALR(instr Instruction) {
	target := c.R[instr.Rs()]
	c.setReg(instr.Rd(), c.nextPC)
	c.jumpTo(target)
}

func (c *CPU) jumpTo(target uint32) {
	if target%4 != 0 {
		c.badvaddr = target
		c.epc = target
		c.cause = (c.cause &^ 0x7C) | (uint32(ExcLoadAddress) << 2)
		c.enterHandler()
		return
	}
	c.nextPC = target
	c.branching = true
}

func (c *CPU) opADDI(instr Instruction) {
	a := int32(c.R[instr.Rs()])
	b := int32(instr.ImmSE16())
	sum := a + b
	if overflowsAdd(a, b, sum) {
		c.raiseException(ExcOverflow, c.currentPC)
		return
	}
	c.setReg(instr.Rt(), uint32(sum))
}

func (c *CPU) opADD(instr Instruction) {
	a := int32(c.R[instr.Rs()])
	b := int32(c.R[instr.Rt()])
	sum := a + b
	if overflowsAdd(a, b, sum) {
		c.raiseException(ExcOverflow, c.currentPC)
		return
	}
	c.setReg(instr.Rd(), uint32(sum))
}

func (c *CPU) opSUB(instr Instruction) {
	a := int32(c.R[instr.Rs()])
	b := int32(c.R[instr.Rt()])
	diff := a - b
	if overflowsSub(a, b, diff) {
		c.raiseException(ExcOverflow, c.currentPC)
		return
	}
	c.setReg(instr.Rd(), uint32(diff))
}

func overflowsAdd(a, b, sum int32) bool {
	return (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0)
}

func overflowsSub(a, b, diff int32) bool {
	return (a >= 0) != (b >= 0) && (diff >= 0) != (a >= 0)
}

func (c *CPU) opMULT(instr Instruction) {
	a := int64(int32(c.R[instr.Rs()]))
	b := int64(int32(c.R[instr.Rt()]))
	r := uint64(a * b)
	c.LO = uint32(r)
	c.HI = uint32(r >> 32)
}

func (c *CPU) opMULTU(instr Instruction) {
	r := uint64(c.R[instr.Rs()]) * uint64(c.R[instr.Rt()])
	c.LO = uint32(r)
	c.HI = uint32(r >> 32)
}

func (c *CPU) opDIV(instr Instruction) {
	n := int32(c.R[instr.Rs()])
	d := int32(c.R[instr.Rt()])
	switch {
	case d == 0:
		if n < 0 {
			c.LO = 1
		} else {
			c.LO = 0xFFFFFFFF
		}
		c.HI = uint32(n)
	case n == -0x80000000 && d == -1:
		c.LO = 0x80000000
		c.HI = 0
	default:
		c.LO = uint32(n / d)
		c.HI = uint32(n % d)
	}
}

func (c *CPU) opDIVU(instr Instruction) {
	n := c.R[instr.Rs()]
	d := c.R[instr.Rt()]
	if d == 0 {
		c.LO = 0xFFFFFFFF
		c.HI = n
		return
	}
	c.LO = n / d
	c.HI = n % d
}

// ---------------------------------------------------------------- loads

func (c *CPU) effectiveAddr(instr Instruction) uint32 {
	return c.R[instr.Rs()] + instr.ImmSE16()
}

func (c *CPU) opLoad(instr Instruction, width Width, signed bool) {
	addr := c.effectiveAddr(instr)
	if c.readBreakpoints[addr] {
		c.dataBreakHit = true
	}
	if width == Width16 && addr%2 != 0 {
		c.raiseAddressException(ExcLoadAddress, addr)
		return
	}
	if width == Width32 && addr%4 != 0 {
		c.raiseAddressException(ExcLoadAddress, addr)
		return
	}
	if c.status&0x10000 != 0 {
		c.issueLoad(instr.Rt(), 0)
		return
	}
	var raw uint32
	switch width {
	case Width8:
		raw = uint32(c.bus.Read8(addr))
		if signed {
			raw = uint32(int32(int8(raw)))
		}
	case Width16:
		raw = uint32(c.bus.Read16(addr))
		if signed {
			raw = uint32(int32(int16(raw)))
		}
	default:
		raw = c.bus.Read32(addr)
	}
	c.issueLoad(instr.Rt(), raw)
}

var lwlMask = [4]uint32{0x00FFFFFF, 0x0000FFFF, 0x000000FF, 0}
var lwlShift = [4]uint{24, 16, 8, 0}
var lwrMask = [4]uint32{0, 0xFF000000, 0xFFFF0000, 0xFFFFFF00}
var lwrShift = [4]uint{0, 8, 16, 24}

func (c *CPU) opLWL(instr Instruction) {
	addr := c.effectiveAddr(instr)
	a := addr & 3
	aligned := addr &^ 3
	m := c.bus.Read32(aligned)
	v := c.RNext[instr.Rt()]
	result := (v & lwlMask[a]) | (m << lwlShift[a])
	c.issueLoad(instr.Rt(), result)
}

func (c *CPU) opLWR(instr Instruction) {
	addr := c.effectiveAddr(instr)
	a := addr & 3
	aligned := addr &^ 3
	m := c.bus.Read32(aligned)
	v := c.RNext[instr.Rt()]
	result := (v & lwrMask[a]) | (m >> lwrShift[a])
	c.issueLoad(instr.Rt(), result)
}

// ---------------------------------------------------------------- stores

func (c *CPU) opStore(instr Instruction, width Width) {
	addr := c.effectiveAddr(instr)
	if c.writeBreakpoints[addr] {
		c.dataBreakHit = true
	}
	if width == Width16 && addr%2 != 0 {
		c.raiseAddressException(ExcStoreAddress, addr)
		return
	}
	if width == Width32 && addr%4 != 0 {
		c.raiseAddressException(ExcStoreAddress, addr)
		return
	}
	if c.status&0x10000 != 0 {
		return
	}
	v := c.R[instr.Rt()]
	switch width {
	case Width8:
		c.bus.Write8(addr, uint8(v))
	case Width16:
		c.bus.Write16(addr, uint16(v))
	default:
		c.bus.Write32(addr, v)
	}
}

func (c *CPU) opSWL(instr Instruction) {
	if c.status&0x10000 != 0 {
		return
	}
	addr := c.effectiveAddr(instr)
	a := addr & 3
	aligned := addr &^ 3
	m := c.bus.Read32(aligned)
	v := c.R[instr.Rt()]
	merged := (m & swlKeepMask(a)) | (v >> lwlShift[a])
	c.bus.Write32(aligned, merged)
}

func swlKeepMask(a uint32) uint32 {
	// Mirror image of lwlMask: bits of M that survive an SWL at offset a.
	switch a {
	case 0:
		return 0xFFFFFF00
	case 1:
		return 0xFFFF0000
	case 2:
		return 0xFF000000
	default:
		return 0x00000000
	}
}

func swrKeepMask(a uint32) uint32 {
	switch a {
	case 0:
		return 0x00000000
	case 1:
		return 0x000000FF
	case 2:
		return 0x0000FFFF
	default:
		return 0x00FFFFFF
	}
}

func (c *CPU) opSWR(instr Instruction) {
	if c.status&0x10000 != 0 {
		return
	}
	addr := c.effectiveAddr(instr)
	a := addr & 3
	aligned := addr &^ 3
	m := c.bus.Read32(aligned)
	v := c.R[instr.Rt()]
	shift := lwrShift[a]
	merged := (m & swrKeepMask(a)) | (v << shift)
	c.bus.Write32(aligned, merged)
}

// ---------------------------------------------------------------- COP0

func (c *CPU) executeCOP0(instr Instruction) {
	switch instr.Rs() {
	case 0x00: // MFC0
		c.setReg(instr.Rt(), c.readCOP0(instr.Rd()))
	case 0x04: // MTC0
		c.writeCOP0(instr.Rd(), c.R[instr.Rt()])
	case 0x10:
		if instr.Funct() == 0x10 { // RFE
			c.status = (c.status &^ 0xF) | ((c.status >> 2) & 0xF)
		} else {
			c.raiseException(ExcIllegalInstruction, c.currentPC)
		}
	default:
		c.raiseException(ExcIllegalInstruction, c.currentPC)
	}
}

func (c *CPU) readCOP0(reg uint32) uint32 {
	switch reg {
	case 8:
		return c.badvaddr
	case 12:
		return c.status
	case 13:
		return c.cause
	case 14:
		return c.epc
	case 15:
		return 2 // PRID
	default:
		return 0
	}
}

func (c *CPU) writeCOP0(reg uint32, v uint32) {
	switch reg {
	case 12:
		c.status = v
	case 13:
		c.cause = (c.cause &^ 0x300) | (v & 0x300)
	case 3, 5, 6, 7, 9, 11:
		// Accepted, ignored (§4.6).
	}
}

// ---------------------------------------------------------------- exceptions

func (c *CPU) raiseAddressException(kind ExceptionKind, addr uint32) {
	c.badvaddr = addr
	c.raiseException(kind, c.currentPC)
}

// raiseException implements the precise-exception entry sequence of §4.6:
// EPC from the faulting PC (adjusted for a delay slot), CAUSE's kind field,
// and the three-level interrupt/mode stack shift in STATUS.
//
// faultingPC is the address of the instruction being pre-empted. Every
// synchronous fault (decode, address, overflow, syscall, ...) raises from
// inside execute(), by which point c.currentPC already names that
// instruction. The one asynchronous case - the external-interrupt poll in
// Step - runs before the fetch step advances currentPC, so it must pass
// c.pc explicitly instead; see Step's step 3.
func (c *CPU) raiseException(kind ExceptionKind, faultingPC uint32) {
	if c.inDelaySlot {
		c.epc = faultingPC - 4
		c.cause |= 1 << 31
	} else {
		c.epc = faultingPC
		c.cause &^= 1 << 31
	}
	c.cause = (c.cause &^ 0x7C) | (uint32(kind) << 2)
	c.enterHandler()
}

func (c *CPU) enterHandler() {
	c.status = (c.status &^ 0x3F) | ((c.status << 2) & 0x3F)
	bev := (c.status>>22)&1 != 0
	handler := uint32(0x80000080)
	if bev {
		handler = 0xBFC00180
	}
	c.pc = handler
	c.nextPC = handler + 4
}

func (c *CPU) IsRunning() bool { return c.running }
func (c *CPU) Stop()          { c.running = false }
func (c *CPU) Resume()        { c.running = true }

func (c *CPU) String() string {
	return fmt.Sprintf("pc=%#08x r1=%#08x hi=%#08x lo=%#08x", c.pc, c.R[1], c.HI, c.LO)
}
