// Package breakpoint tracks software breakpoints: the patched
// addresses, their original bytes, and stable insertion-ordered ids.
// A Table can exist, and accumulate disabled entries, before any
// tracee is live -- SetMem attaches the memory surface once a Debugger
// starts a process.
package breakpoint

import (
	"github.com/kwarrick/shortstop/internal/dbgerr"
)

// Poker is the minimal memory surface a Table needs to patch and
// unpatch int3 bytes; internal/memio.Memory satisfies it.
type Poker interface {
	Read(addr uint64, n int) ([]byte, error)
	Write(addr uint64, data []byte) (int, error)
}

const int3 = 0xCC

// Breakpoint is one tracked software breakpoint.
type Breakpoint struct {
	ID      uint
	Addr    uint64
	Enabled bool
	saved   byte
}

// Table owns every breakpoint set in a debugging session, keyed by a
// monotonically increasing id assigned in insertion order. A plain Go
// map (like jackc-delve's BreakPoints map) loses that order, so ids
// are also tracked separately in an insertion-order slice.
type Table struct {
	mem    Poker
	byID   map[uint]*Breakpoint
	order  []uint
	nextID uint
}

// New returns an empty breakpoint table with no memory surface
// attached yet. Register works immediately; Enable/Disable/Set require
// SetMem first.
func New() *Table {
	return &Table{byID: make(map[uint]*Breakpoint)}
}

// SetMem attaches (or replaces) the memory surface used to patch and
// restore bytes, called once a tracee is live.
func (t *Table) SetMem(mem Poker) {
	t.mem = mem
}

// Register allocates a disabled breakpoint entry for addr without
// touching tracee memory, the Loaded-phase case where `break` is legal
// but there is no process yet to patch. Registering an address already
// tracked is a no-op that returns the existing id.
func (t *Table) Register(addr uint64) uint {
	for _, id := range t.order {
		if bp := t.byID[id]; bp.Addr == addr {
			return bp.ID
		}
	}
	t.nextID++
	bp := &Breakpoint{ID: t.nextID, Addr: addr}
	t.byID[bp.ID] = bp
	t.order = append(t.order, bp.ID)
	return bp.ID
}

// Set registers addr if needed and immediately enables it against the
// live tracee -- the Running-phase case for `break`.
func (t *Table) Set(addr uint64) (uint, error) {
	id := t.Register(addr)
	if err := t.Enable(id); err != nil {
		return 0, err
	}
	return id, nil
}

// Clear restores the original byte (if enabled) at id's address and
// removes it from the table.
func (t *Table) Clear(id uint) error {
	bp, ok := t.byID[id]
	if !ok {
		return &dbgerr.NoBreakpoint{ID: id}
	}

	if bp.Enabled {
		if err := t.Disable(id); err != nil {
			return err
		}
	}

	delete(t.byID, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// ClearAll removes every breakpoint, restoring original bytes where
// enabled.
func (t *Table) ClearAll() error {
	for _, id := range append([]uint(nil), t.order...) {
		if err := t.Clear(id); err != nil {
			return err
		}
	}
	return nil
}

// Disable restores the original byte without forgetting the
// breakpoint, so it can be re-enabled later (used for the
// step-over-breakpoint dance).
func (t *Table) Disable(id uint) error {
	bp, ok := t.byID[id]
	if !ok {
		return &dbgerr.NoBreakpoint{ID: id}
	}
	if !bp.Enabled {
		return nil
	}
	if t.mem == nil {
		return &dbgerr.NotRunning{}
	}
	if _, err := t.mem.Write(bp.Addr, []byte{bp.saved}); err != nil {
		return err
	}
	bp.Enabled = false
	return nil
}

// Enable reads and saves the original byte, then patches int3 at id's
// address. Requires SetMem to have been called.
func (t *Table) Enable(id uint) error {
	bp, ok := t.byID[id]
	if !ok {
		return &dbgerr.NoBreakpoint{ID: id}
	}
	if bp.Enabled {
		return nil
	}
	if t.mem == nil {
		return &dbgerr.NotRunning{}
	}
	orig, err := t.mem.Read(bp.Addr, 1)
	if err != nil {
		return err
	}
	if _, err := t.mem.Write(bp.Addr, []byte{int3}); err != nil {
		return err
	}
	bp.saved = orig[0]
	bp.Enabled = true
	return nil
}

// At returns the breakpoint patched at addr, if any, and whether it
// currently carries an int3.
func (t *Table) At(addr uint64) (*Breakpoint, bool) {
	for _, id := range t.order {
		if bp := t.byID[id]; bp.Addr == addr && bp.Enabled {
			return bp, true
		}
	}
	return nil, false
}

// Get returns the breakpoint with the given id.
func (t *Table) Get(id uint) (*Breakpoint, bool) {
	bp, ok := t.byID[id]
	return bp, ok
}

// All returns every breakpoint in insertion order.
func (t *Table) All() []*Breakpoint {
	out := make([]*Breakpoint, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// ReenableAll re-patches int3 at every tracked address against
// whatever memory surface is currently attached; used when `run`
// restarts the tracee and breakpoints must carry over into the fresh
// process image.
func (t *Table) ReenableAll() error {
	for _, id := range t.order {
		bp := t.byID[id]
		bp.Enabled = false
		if err := t.Enable(id); err != nil {
			return err
		}
	}
	return nil
}
