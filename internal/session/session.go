// Package session implements Environment<S>: the phase-typed state
// that carries breakpoints, arguments, and examine context across
// file loads and process runs. Rather than a generic type parameter,
// each phase is a concrete Go type holding the shared *Config, the
// algebraic-sum-with-phase-typed-handlers shape called for by a
// state machine whose legal operations vary by phase.
package session

import (
	"fmt"

	"github.com/kwarrick/shortstop/internal/breakpoint"
	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/dbgerr"
	"github.com/kwarrick/shortstop/internal/examine"
)

// EventKind classifies the phase transitions a handler can request.
type EventKind int

const (
	// NoEvent means the phase is unchanged.
	NoEvent EventKind = iota
	// Opened carries a newly loaded binary path; Empty/Loaded/Running ->
	// Loaded.
	Opened
	// Started asks the Shell to build and run a Debugger; Loaded ->
	// Running.
	Started
	// ProcessExited means the tracee exited; Running -> Loaded.
	ProcessExited
)

// Event is returned by a phase's HandleCommand to request a
// transition, interpreted by internal/shell.
type Event struct {
	Kind EventKind
	Path string
}

// Config is the state every phase carries: it survives file loads and
// process runs within one session.
type Config struct {
	Path        string
	Args        []string
	Breakpoints *breakpoint.Table
	Examine     examine.State
}

// NewConfig returns an empty Config ready for the Empty phase.
func NewConfig() *Config {
	return &Config{Breakpoints: breakpoint.New()}
}

// Phase is satisfied by EmptyPhase, LoadedPhase, and RunningPhase.
type Phase interface {
	HandleCommand(cmd cliparse.Cmd) (Event, error)
	Config() *Config
}

// Confirmer asks a yes/no question and reports the answer, letting
// the REPL supply its own EOF/interrupt handling (see spec.md's
// "(y or n)" prompts) while session logic stays prompt-agnostic.
type Confirmer interface {
	Confirm(prompt string) bool
}

func notRunning() error   { return &dbgerr.NotRunning{} }
func noExecutable() error { return &dbgerr.NoExecutable{} }
func setExprError() error { return fmt.Errorf("set expressions are not implemented yet") }

// examineReader is the memory surface examine.Render needs; kept as a
// narrow local interface so Loaded (no tracee) can pass nil and Running
// can pass its *debugger.Debugger without an import cycle.
type examineReader interface {
	Read(addr uint64, n int) ([]byte, error)
}

func renderExamine(mem examineReader, cfg *Config) (string, error) {
	return examine.Render(mem, &cfg.Examine)
}
