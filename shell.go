// shell.go - composition root and CLI entry point (§6)

/*
Two positional arguments, no flags, same texture as the teacher's main.go:
a BIOS image path (required) and an optional .exe sideload path. Anything
else is a usage error with a nonzero exit.
*/

package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <bios.bin> [program.exe]\n", os.Args[0])
		os.Exit(1)
	}

	biosPath := os.Args[1]
	biosData, err := os.ReadFile(biosPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shell: reading BIOS: %v\n", err)
		os.Exit(1)
	}
	bios := NewMemorySegmentFromBytes(padTo(biosData, biosSize), true)

	irq := NewInterruptController()
	renderer := Renderer(NewNullRenderer())
	if hasEbitenDisplay() {
		renderer = newEbitenRenderer()
	}
	gpu := NewGPU(renderer)
	bus := NewBus(bios, gpu, irq)
	cpu := NewCPU(bus, irq)

	if len(os.Args) == 3 {
		exeData, err := os.ReadFile(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "shell: reading program: %v\n", err)
			os.Exit(1)
		}
		exe, err := ParseEXE(exeData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shell: %v\n", err)
			os.Exit(1)
		}
		cpu.AttachEXE(exe)
	}

	dbg := NewDebugger(cpu, bus)
	if err := LoadDebugState(debuggerStateFile, dbg); err != nil {
		fmt.Fprintf(os.Stderr, "shell: %v\n", err)
	}

	ebitenRenderer, windowed := renderer.(*EbitenRenderer)
	if windowed {
		// ebiten.RunGame must run on the host's main goroutine, so the
		// step loop that drives it moves to a second goroutine (§6.1, §7).
		go func() {
			runShell(cpu, dbg)
			saveDebugState(dbg)
			os.Exit(0)
		}()
		if err := ebitenRenderer.Run(); err != nil {
			logf("shell", "renderer: %v", err)
		}
		return
	}

	runShell(cpu, dbg)
	saveDebugState(dbg)
}

func saveDebugState(dbg *Debugger) {
	if err := SaveDebugState(debuggerStateFile, dbg); err != nil {
		fmt.Fprintf(os.Stderr, "shell: saving debugger state: %v\n", err)
	}
}

const debuggerStateFile = "debugger.json"

// logf is the module's one logging primitive: a component-prefixed line on
// stderr, matching the teacher's fmt.Printf/Println-with-prefix convention
// rather than pulling in a structured logging library (§2).
func logf(component, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[%s] "+format+"\n", append([]any{component}, args...)...)
}

func padTo(data []byte, size int) []byte {
	if len(data) >= size {
		return data[:size]
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

// runShell drives the CPU's step loop, deferring to the interactive REPL
// when stdin looks like a terminal and free-running otherwise.
func runShell(cpu *CPU, dbg *Debugger) {
	if isInteractive() {
		runREPL(cpu, dbg)
		return
	}
	for cpu.IsRunning() {
		if !cpu.Step() {
			break
		}
	}
}
