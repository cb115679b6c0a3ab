// debugger.go - register/memory inspection and breakpoint surface (§4.7)

/*
Modeled on the teacher's DebuggableCPU contract: a thin adapter in front of
the running core that a TUI or any other external collaborator can poll
without reaching into CPU internals directly. The TUI itself is out of
scope (§1) - this is the contract it would be built against.
*/

package main

import "fmt"

// RegisterInfo names one inspectable register for a debugger front-end.
type RegisterInfo struct {
	Name  string
	Value uint32
}

// DisassembledLine is one decoded instruction at a given address.
type DisassembledLine struct {
	Address  uint32
	Mnemonic string
	Hint     string
}

// DataBreakpoint is a read or write watch on a single bus address.
type DataBreakpoint struct {
	Address uint32
	OnWrite bool
}

// DebuggableCPU is the read/control surface a debugger front-end drives.
type DebuggableCPU interface {
	GetRegisters() []RegisterInfo
	GetRegister(name string) (uint32, bool)
	SetRegister(name string, value uint32) bool
	ReadMemory(addr uint32, width Width) uint32
	WriteMemory(addr uint32, width Width, value uint32)
	Disassemble(addr uint32) DisassembledLine
	Step() bool
	AddBreakpoint(addr uint32)
	RemoveBreakpoint(addr uint32)
	AddDataBreakpoint(bp DataBreakpoint)
	RemoveDataBreakpoint(bp DataBreakpoint)
	Breakpoints() []uint32
	Freeze()
	Resume()
}

// Debugger wraps a CPU and Bus to implement DebuggableCPU.
type Debugger struct {
	cpu *CPU
	bus *Bus
}

func NewDebugger(cpu *CPU, bus *Bus) *Debugger {
	return &Debugger{cpu: cpu, bus: bus}
}

var registerNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

func (d *Debugger) GetRegisters() []RegisterInfo {
	out := make([]RegisterInfo, 0, 34)
	for i, name := range registerNames {
		out = append(out, RegisterInfo{Name: name, Value: d.cpu.R[i]})
	}
	out = append(out, RegisterInfo{Name: "pc", Value: d.cpu.pc})
	out = append(out, RegisterInfo{Name: "hi", Value: d.cpu.HI})
	out = append(out, RegisterInfo{Name: "lo", Value: d.cpu.LO})
	return out
}

func (d *Debugger) GetRegister(name string) (uint32, bool) {
	switch name {
	case "pc":
		return d.cpu.pc, true
	case "hi":
		return d.cpu.HI, true
	case "lo":
		return d.cpu.LO, true
	}
	for i, n := range registerNames {
		if n == name {
			return d.cpu.R[i], true
		}
	}
	return 0, false
}

func (d *Debugger) SetRegister(name string, value uint32) bool {
	switch name {
	case "pc":
		d.cpu.pc = value
		return true
	case "hi":
		d.cpu.HI = value
		return true
	case "lo":
		d.cpu.LO = value
		return true
	}
	for i, n := range registerNames {
		if n == name {
			if i != 0 {
				d.cpu.R[i] = value
				d.cpu.RNext[i] = value
			}
			return true
		}
	}
	return false
}

func (d *Debugger) ReadMemory(addr uint32, width Width) uint32 {
	switch width {
	case Width8:
		return uint32(d.bus.Read8(addr))
	case Width16:
		return uint32(d.bus.Read16(addr))
	default:
		return d.bus.Read32(addr)
	}
}

func (d *Debugger) WriteMemory(addr uint32, width Width, value uint32) {
	switch width {
	case Width8:
		d.bus.Write8(addr, uint8(value))
	case Width16:
		d.bus.Write16(addr, uint16(value))
	default:
		d.bus.Write32(addr, value)
	}
}

func (d *Debugger) Disassemble(addr uint32) DisassembledLine {
	word := d.bus.Read32(addr)
	mnemonic, hint := Disassemble(addr, word, d.cpu)
	return DisassembledLine{Address: addr, Mnemonic: mnemonic, Hint: hint}
}

// Step advances the CPU one instruction, returning false when it stopped on
// a breakpoint (matching CPU.Step's own contract).
func (d *Debugger) Step() bool { return d.cpu.Step() }

func (d *Debugger) AddBreakpoint(addr uint32)    { d.cpu.breakpoints[addr] = true }
func (d *Debugger) RemoveBreakpoint(addr uint32) { delete(d.cpu.breakpoints, addr) }

func (d *Debugger) AddDataBreakpoint(bp DataBreakpoint) {
	if bp.OnWrite {
		d.cpu.writeBreakpoints[bp.Address] = true
	} else {
		d.cpu.readBreakpoints[bp.Address] = true
	}
}

func (d *Debugger) RemoveDataBreakpoint(bp DataBreakpoint) {
	if bp.OnWrite {
		delete(d.cpu.writeBreakpoints, bp.Address)
	} else {
		delete(d.cpu.readBreakpoints, bp.Address)
	}
}

func (d *Debugger) Breakpoints() []uint32 {
	out := make([]uint32, 0, len(d.cpu.breakpoints))
	for addr := range d.cpu.breakpoints {
		out = append(out, addr)
	}
	return out
}

func (d *Debugger) Freeze() { d.cpu.Stop() }
func (d *Debugger) Resume() { d.cpu.Resume() }

func (d *Debugger) String() string {
	return fmt.Sprintf("debugger attached at pc=%#08x", d.cpu.pc)
}
