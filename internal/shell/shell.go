// Package shell implements the Shell top-level state machine: it holds
// one session.Phase erased into the Empty/Loaded/Running sum, parses
// each REPL line, dispatches it to the current phase, and interprets
// the returned session.Event to perform the phase transitions spec'd
// in the Environment<S> design (Empty--File-->Loaded,
// Loaded--File-->Loaded, Loaded--Run-->Running, Running--File-->Loaded,
// Running--Exit-->Loaded).
package shell

import (
	"fmt"

	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/debugger"
	"github.com/kwarrick/shortstop/internal/session"
)

// Shell dispatches parsed commands to the current phase and drives
// phase transitions. It is not itself a session.Phase: it owns the
// one live phase value and swaps it out, rather than embedding all
// three.
type Shell struct {
	confirmer session.Confirmer
	phase     session.Phase
}

// New returns a Shell starting in the Empty phase, with confirmer
// backing every y/n prompt a phase handler issues.
func New(confirmer session.Confirmer) *Shell {
	return &Shell{confirmer: confirmer, phase: session.NewEmptyPhase()}
}

// Phase exposes the current phase, mostly for tests and for `info`
// handlers that need to know whether a tracee exists.
func (s *Shell) Phase() session.Phase { return s.phase }

// HandleLine parses and dispatches one REPL line. A KindHelp command is
// intercepted by Dispatch rather than threaded through every phase,
// since `help` means the same thing regardless of phase.
func (s *Shell) HandleLine(line string) error {
	cmd, err := cliparse.ParseCommand(line)
	if err != nil {
		return err
	}
	return s.Dispatch(cmd)
}

// Dispatch hands cmd to the current phase and applies any transition
// its result requests.
func (s *Shell) Dispatch(cmd cliparse.Cmd) error {
	if cmd.Kind == cliparse.KindHelp {
		fmt.Print(cliparse.Help())
		return nil
	}

	ev, err := s.phase.HandleCommand(cmd)
	if err != nil {
		return err
	}
	return s.transition(ev)
}

// transition interprets a session.Event, swapping s.phase when it
// requests one. Run itself is performed here rather than inside
// LoadedPhase, because starting a tracee requires constructing a
// Debugger -- an object only the Running phase holds.
func (s *Shell) transition(ev session.Event) error {
	switch ev.Kind {
	case session.NoEvent:
		return nil

	case session.Opened:
		cfg := s.phase.Config()
		s.phase = session.NewLoadedPhase(cfg, s.confirmer, ev.Path)
		return nil

	case session.Started:
		cfg := s.phase.Config()
		dbg := debugger.New(cfg.Path, cfg.Breakpoints)
		if _, err := dbg.Run(cfg.Args); err != nil {
			return err
		}
		s.phase = session.NewRunningPhase(cfg, s.confirmer, dbg)
		return nil

	case session.ProcessExited:
		cfg := s.phase.Config()
		s.phase = session.NewLoadedPhase(cfg, s.confirmer, cfg.Path)
		return nil

	default:
		return fmt.Errorf("shell: unexpected phase event %d", ev.Kind)
	}
}
