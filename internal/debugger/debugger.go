// Package debugger composes memio, tracee, and a breakpoint table into
// the single entry point the session/shell layer drives: one struct
// that knows how to run, step, continue, and manage breakpoints
// against a live tracee. The breakpoint table itself is owned by the
// caller (internal/session) so it survives phase transitions; Run only
// attaches the table to the freshly started tracee's memory.
package debugger

import (
	"github.com/kwarrick/shortstop/internal/breakpoint"
	"github.com/kwarrick/shortstop/internal/dbgerr"
	"github.com/kwarrick/shortstop/internal/memio"
	"github.com/kwarrick/shortstop/internal/tracee"
	"golang.org/x/sys/unix"
)

// Debugger binds one tracee to its memory I/O and a caller-owned
// breakpoint table.
type Debugger struct {
	Prog string
	bps  *breakpoint.Table

	tr  *tracee.Tracee
	mem *memio.Memory
}

// New returns a Debugger for the executable at prog, operating on bps.
// No process is started until Run is called.
func New(prog string, bps *breakpoint.Table) *Debugger {
	return &Debugger{Prog: prog, bps: bps, tr: tracee.New(prog)}
}

// Running reports whether a tracee process is currently live.
func (d *Debugger) Running() bool {
	return d.tr.Alive()
}

// Pid returns the tracee's process id, or 0 if none is live.
func (d *Debugger) Pid() int {
	return d.tr.Pid()
}

// Run starts (or restarts) the tracee with the given arguments. Any
// previously running tracee is killed first. The breakpoint table is
// re-attached to the fresh process's memory and every tracked
// breakpoint is re-patched, matching the "breakpoints survive `run`"
// decision.
func (d *Debugger) Run(args []string) (tracee.Event, error) {
	d.tr.Kill()
	d.tr = tracee.New(d.Prog)

	ev, err := d.tr.Run(args)
	if err != nil {
		return tracee.Event{}, err
	}

	d.mem = &memio.Memory{Pid: d.tr.Pid()}
	d.bps.SetMem(d.mem)
	if err := d.bps.ReenableAll(); err != nil {
		return tracee.Event{}, err
	}

	return ev, nil
}

// Kill terminates the running tracee, if any.
func (d *Debugger) Kill() {
	d.tr.Kill()
}

// Break registers addr if needed and immediately enables it against
// the live tracee, returning its id.
func (d *Debugger) Break(addr uint64) (uint, error) {
	if !d.Running() {
		return 0, &dbgerr.NotRunning{}
	}
	return d.bps.Set(addr)
}

// ClearBreak removes breakpoint id.
func (d *Debugger) ClearBreak(id uint) error {
	if !d.Running() {
		return &dbgerr.NotRunning{}
	}
	return d.bps.Clear(id)
}

// Breakpoints returns every tracked breakpoint in insertion order.
func (d *Debugger) Breakpoints() []*breakpoint.Breakpoint {
	return d.bps.All()
}

// Read reads n bytes of tracee memory at addr.
func (d *Debugger) Read(addr uint64, n int) ([]byte, error) {
	if !d.Running() {
		return nil, &dbgerr.NotRunning{}
	}
	return d.mem.Read(addr, n)
}

// Write writes data into tracee memory at addr.
func (d *Debugger) Write(addr uint64, data []byte) (int, error) {
	if !d.Running() {
		return 0, &dbgerr.NotRunning{}
	}
	return d.mem.Write(addr, data)
}

// PC returns the tracee's current program counter.
func (d *Debugger) PC() (uint64, error) {
	if !d.Running() {
		return 0, &dbgerr.NotRunning{}
	}
	return d.tr.PC()
}

// Regs returns the tracee's current general-purpose registers.
func (d *Debugger) Regs() (*unix.PtraceRegs, error) {
	if !d.Running() {
		return nil, &dbgerr.NotRunning{}
	}
	return d.tr.Regs()
}

// Step single-steps the tracee one machine instruction, performing the
// step-over-breakpoint dance if the current pc carries an int3: the
// original byte is restored, the single step executes the real
// instruction, and the int3 is repatched before returning.
func (d *Debugger) Step() (tracee.Event, error) {
	if !d.Running() {
		return tracee.Event{}, &dbgerr.NotRunning{}
	}

	pc, err := d.tr.PC()
	if err != nil {
		return tracee.Event{}, err
	}

	if bp, ok := d.bps.At(pc); ok {
		if err := d.bps.Disable(bp.ID); err != nil {
			return tracee.Event{}, err
		}
		ev, err := d.tr.Step()
		if err != nil {
			return tracee.Event{}, err
		}
		if ev.Kind == tracee.Exited {
			return ev, nil
		}
		if err := d.bps.Enable(bp.ID); err != nil {
			return tracee.Event{}, err
		}
		return ev, nil
	}

	return d.tr.Step()
}

// Continue resumes the tracee until the next breakpoint trap, signal,
// or process exit. If execution is currently parked on a breakpoint
// address, the breakpoint is stepped over first so the tracee does not
// immediately re-trap on its own int3.
func (d *Debugger) Continue() (tracee.Event, error) {
	if !d.Running() {
		return tracee.Event{}, &dbgerr.NotRunning{}
	}

	pc, err := d.tr.PC()
	if err != nil {
		return tracee.Event{}, err
	}

	if bp, ok := d.bps.At(pc); ok {
		if err := d.bps.Disable(bp.ID); err != nil {
			return tracee.Event{}, err
		}
		ev, err := d.tr.Step()
		if err != nil {
			return tracee.Event{}, err
		}
		if ev.Kind == tracee.Exited {
			return ev, nil
		}
		if err := d.bps.Enable(bp.ID); err != nil {
			return tracee.Event{}, err
		}
	}

	return d.tr.Cont()
}
