// debugger_persist.go - JSON persistence of debugger state (§6.3)

/*
Uses the same request/response JSON-tag discipline as the teacher's IPC
framing, applied here to a state file instead of a socket: plain structs,
explicit json tags, no custom marshalers.
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// PersistedDebugState is the on-disk shape of debugger.json.
type PersistedDebugState struct {
	Breakpoints     []uint32          `json:"breakpoints"`
	DataBreakpoints []DataBreakpoint  `json:"data_breakpoints"`
}

// SaveDebugState writes the debugger's breakpoints to path as JSON.
func SaveDebugState(path string, d *Debugger) error {
	state := PersistedDebugState{
		Breakpoints:     d.Breakpoints(),
		DataBreakpoints: collectDataBreakpoints(d.cpu),
	}
	buf, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("debugger: marshal state: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}

func collectDataBreakpoints(cpu *CPU) []DataBreakpoint {
	out := make([]DataBreakpoint, 0, len(cpu.readBreakpoints)+len(cpu.writeBreakpoints))
	for addr := range cpu.readBreakpoints {
		out = append(out, DataBreakpoint{Address: addr, OnWrite: false})
	}
	for addr := range cpu.writeBreakpoints {
		out = append(out, DataBreakpoint{Address: addr, OnWrite: true})
	}
	return out
}

// LoadDebugState restores breakpoints from path into d. A missing file is
// not an error - a fresh session simply starts with none. A malformed file
// is logged and otherwise ignored rather than treated as fatal, since a
// corrupt debugger.json should never block booting the machine.
func LoadDebugState(path string, d *Debugger) error {
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("debugger: read state: %w", err)
	}

	var state PersistedDebugState
	if err := json.Unmarshal(buf, &state); err != nil {
		logf("debugger", "ignoring malformed %s: %v", path, err)
		return nil
	}

	for _, addr := range state.Breakpoints {
		d.AddBreakpoint(addr)
	}
	for _, bp := range state.DataBreakpoints {
		d.AddDataBreakpoint(bp)
	}
	return nil
}
