// shell_repl.go - interactive single-step debugger front-end (§6.2)

/*
Raw-mode keystroke stepping when stdin is a real terminal (golang.org/x/term),
falling back to line-buffered commands otherwise - the same TTY/non-TTY split
the teacher draws between its interactive and scripted runtimes.
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// runREPL drives the machine one step at a time, printing the next
// instruction before each step and accepting single-key commands:
//
//	n / space   step one instruction
//	c           continue until the next breakpoint
//	b <addr>    set a breakpoint (hex; line mode only, raw mode ignores b)
//	r           dump registers
//	q           quit, persisting debugger state on the way out
func runREPL(cpu *CPU, dbg *Debugger) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, oldState)
			runRawREPL(cpu, dbg, fd)
			return
		}
	}
	runLineREPL(cpu, dbg)
}

func runRawREPL(cpu *CPU, dbg *Debugger, fd int) {
	buf := make([]byte, 1)
	for cpu.IsRunning() {
		printNextInstruction(dbg, cpu.pc)
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		switch buf[0] {
		case 'n', ' ', '\r':
			if !dbg.Step() {
				fmt.Print("\r\nbreakpoint hit\r\n")
			}
		case 'c':
			for cpu.IsRunning() {
				if !dbg.Step() {
					break
				}
			}
		case 'r':
			printRegisters(dbg)
		case 'q':
			return
		}
	}
}

func runLineREPL(cpu *CPU, dbg *Debugger) {
	scanner := bufio.NewScanner(os.Stdin)
	for cpu.IsRunning() {
		printNextInstruction(dbg, cpu.pc)
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fields = []string{"n"}
		}
		switch fields[0] {
		case "n", "step":
			if !dbg.Step() {
				fmt.Println("breakpoint hit")
			}
		case "c", "continue":
			for cpu.IsRunning() {
				if !dbg.Step() {
					break
				}
			}
		case "b", "break":
			if len(fields) < 2 {
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err == nil {
				dbg.AddBreakpoint(uint32(addr))
			}
		case "r", "regs":
			printRegisters(dbg)
		case "q", "quit":
			return
		}
	}
}

func printNextInstruction(dbg *Debugger, pc uint32) {
	line := dbg.Disassemble(pc)
	fmt.Printf("%#08x: %-28s %s\n", line.Address, line.Mnemonic, line.Hint)
}

func printRegisters(dbg *Debugger) {
	for _, r := range dbg.GetRegisters() {
		fmt.Printf("%-4s = %#08x\n", r.Name, r.Value)
	}
}
