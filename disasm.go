// disasm.go - pure instruction-to-text decoder for the debugger surface (§4.7)

package main

import "fmt"

// Disassemble renders a single instruction word as a mnemonic plus an
// optional hint (the resolved branch/jump target, or for loads and stores a
// note naming the base register the effective address depends on), matching
// the two-field shape the debugger surface exposes.
// It performs no CPU side effects: COP0 state is read-only context here.
func Disassemble(pc uint32, word uint32, cpu *CPU) (mnemonic string, hint string) {
	instr := Instruction(word)

	switch instr.Opcode() {
	case 0x00:
		return disasmSpecial(instr)
	case 0x01:
		return disasmRegimm(instr, pc)
	case 0x02:
		target := (pc+4)&0xF0000000 | instr.Imm26()<<2
		return "j", fmt.Sprintf("%#08x", target)
	case 0x03:
		target := (pc+4)&0xF0000000 | instr.Imm26()<<2
		return "jal", fmt.Sprintf("%#08x", target)
	case 0x04:
		return disasmBranch(instr, pc, "beq")
	case 0x05:
		return disasmBranch(instr, pc, "bne")
	case 0x06:
		return disasmBranch(instr, pc, "blez")
	case 0x07:
		return disasmBranch(instr, pc, "bgtz")
	case 0x08:
		return disasmImm(instr, "addi")
	case 0x09:
		return disasmImm(instr, "addiu")
	case 0x0A:
		return disasmImm(instr, "slti")
	case 0x0B:
		return disasmImm(instr, "sltiu")
	case 0x0C:
		return disasmImm(instr, "andi")
	case 0x0D:
		return disasmImm(instr, "ori")
	case 0x0E:
		return disasmImm(instr, "xori")
	case 0x0F:
		return fmt.Sprintf("lui r%d, %#x", instr.Rt(), instr.Imm16()), ""
	case 0x10:
		return disasmCOP0(instr, cpu)
	case 0x11, 0x12, 0x13:
		return "cop", fmt.Sprintf("coprocessor %d unavailable", instr.Opcode()-0x10)
	case 0x20:
		return disasmLoadStore(instr, "lb")
	case 0x21:
		return disasmLoadStore(instr, "lh")
	case 0x22:
		return disasmLoadStore(instr, "lwl")
	case 0x23:
		return disasmLoadStore(instr, "lw")
	case 0x24:
		return disasmLoadStore(instr, "lbu")
	case 0x25:
		return disasmLoadStore(instr, "lhu")
	case 0x26:
		return disasmLoadStore(instr, "lwr")
	case 0x28:
		return disasmLoadStore(instr, "sb")
	case 0x29:
		return disasmLoadStore(instr, "sh")
	case 0x2A:
		return disasmLoadStore(instr, "swl")
	case 0x2B:
		return disasmLoadStore(instr, "sw")
	case 0x2E:
		return disasmLoadStore(instr, "swr")
	default:
		return fmt.Sprintf("??? (%#08x)", word), ""
	}
}

func disasmImm(instr Instruction, name string) (string, string) {
	return fmt.Sprintf("%s r%d, r%d, %#x", name, instr.Rt(), instr.Rs(), instr.Imm16()), ""
}

func disasmLoadStore(instr Instruction, name string) (string, string) {
	mnemonic := fmt.Sprintf("%s r%d, %#x(r%d)", name, instr.Rt(), instr.Imm16(), instr.Rs())
	return mnemonic, "effective address depends on r" + fmt.Sprint(instr.Rs())
}

func disasmBranch(instr Instruction, pc uint32, name string) (string, string) {
	target := pc + 4 + instr.ImmSE16()<<2
	return fmt.Sprintf("%s r%d, r%d, %#x", name, instr.Rs(), instr.Rt(), target), fmt.Sprintf("target %#08x", target)
}

func disasmRegimm(instr Instruction, pc uint32) (string, string) {
	names := map[uint32]string{0x00: "bltz", 0x01: "bgez", 0x10: "bltzal", 0x11: "bgezal"}
	name, ok := names[instr.Rt()]
	if !ok {
		name = "regimm"
	}
	target := pc + 4 + instr.ImmSE16()<<2
	return fmt.Sprintf("%s r%d, %#x", name, instr.Rs(), target), fmt.Sprintf("target %#08x", target)
}

func disasmSpecial(instr Instruction) (string, string) {
	switch instr.Funct() {
	case 0x00:
		return fmt.Sprintf("sll r%d, r%d, %d", instr.Rd(), instr.Rt(), instr.Shamt()), ""
	case 0x02:
		return fmt.Sprintf("srl r%d, r%d, %d", instr.Rd(), instr.Rt(), instr.Shamt()), ""
	case 0x03:
		return fmt.Sprintf("sra r%d, r%d, %d", instr.Rd(), instr.Rt(), instr.Shamt()), ""
	case 0x08:
		return fmt.Sprintf("jr r%d", instr.Rs()), ""
	case 0x09:
		return fmt.Sprintf("jalr r%d, r%d", instr.Rd(), instr.Rs()), ""
	case 0x0C:
		return "syscall", ""
	case 0x0D:
		return "break", ""
	case 0x10:
		return fmt.Sprintf("mfhi r%d", instr.Rd()), ""
	case 0x12:
		return fmt.Sprintf("mflo r%d", instr.Rd()), ""
	case 0x18:
		return fmt.Sprintf("mult r%d, r%d", instr.Rs(), instr.Rt()), ""
	case 0x19:
		return fmt.Sprintf("multu r%d, r%d", instr.Rs(), instr.Rt()), ""
	case 0x1A:
		return fmt.Sprintf("div r%d, r%d", instr.Rs(), instr.Rt()), ""
	case 0x1B:
		return fmt.Sprintf("divu r%d, r%d", instr.Rs(), instr.Rt()), ""
	case 0x20:
		return fmt.Sprintf("add r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x21:
		return fmt.Sprintf("addu r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x22:
		return fmt.Sprintf("sub r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x23:
		return fmt.Sprintf("subu r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x24:
		return fmt.Sprintf("and r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x25:
		return fmt.Sprintf("or r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x26:
		return fmt.Sprintf("xor r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x27:
		return fmt.Sprintf("nor r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x2A:
		return fmt.Sprintf("slt r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	case 0x2B:
		return fmt.Sprintf("sltu r%d, r%d, r%d", instr.Rd(), instr.Rs(), instr.Rt()), ""
	default:
		return fmt.Sprintf("??? special funct %#x", instr.Funct()), ""
	}
}

func disasmCOP0(instr Instruction, cpu *CPU) (string, string) {
	switch instr.Rs() {
	case 0x00:
		return fmt.Sprintf("mfc0 r%d, cop0r%d", instr.Rt(), instr.Rd()), ""
	case 0x04:
		return fmt.Sprintf("mtc0 r%d, cop0r%d", instr.Rt(), instr.Rd()), ""
	case 0x10:
		if instr.Funct() == 0x10 {
			hint := ""
			if cpu != nil {
				hint = fmt.Sprintf("status=%#x", cpu.status)
			}
			return "rfe", hint
		}
	}
	return "cop0", ""
}
