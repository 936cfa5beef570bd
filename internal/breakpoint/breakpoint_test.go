package breakpoint_test

import (
	"bytes"
	"testing"

	"github.com/kwarrick/shortstop/internal/breakpoint"
)

// fakeMem is an in-memory Poker standing in for a tracee's address
// space, sized generously so fixed test addresses land inside it.
type fakeMem struct {
	buf map[uint64]byte
}

func newFakeMem() *fakeMem { return &fakeMem{buf: make(map[uint64]byte)} }

func newTable(mem *fakeMem) *breakpoint.Table {
	tbl := breakpoint.New()
	tbl.SetMem(mem)
	return tbl
}

func (m *fakeMem) Read(addr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.buf[addr+uint64(i)]
	}
	return out, nil
}

func (m *fakeMem) Write(addr uint64, data []byte) (int, error) {
	for i, b := range data {
		m.buf[addr+uint64(i)] = b
	}
	return len(data), nil
}

func TestSetPatchesInt3AndSavesOriginal(t *testing.T) {
	mem := newFakeMem()
	mem.buf[0x1000] = 0x90

	tbl := newTable(mem)
	id, err := tbl.Set(0x1000)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}

	got, _ := mem.Read(0x1000, 1)
	if !bytes.Equal(got, []byte{0xCC}) {
		t.Fatalf("memory = %x, want CC", got)
	}
}

func TestSetSameAddrReturnsSameID(t *testing.T) {
	mem := newFakeMem()
	tbl := newTable(mem)

	id1, _ := tbl.Set(0x2000)
	id2, _ := tbl.Set(0x2000)
	if id1 != id2 {
		t.Fatalf("re-setting same address got ids %d, %d", id1, id2)
	}
}

func TestClearRestoresOriginalByte(t *testing.T) {
	mem := newFakeMem()
	mem.buf[0x3000] = 0x55

	tbl := newTable(mem)
	id, _ := tbl.Set(0x3000)

	if err := tbl.Clear(id); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, _ := mem.Read(0x3000, 1)
	if got[0] != 0x55 {
		t.Fatalf("memory after clear = %x, want 55", got[0])
	}

	if _, ok := tbl.Get(id); ok {
		t.Fatalf("breakpoint %d still tracked after Clear", id)
	}
}

func TestClearUnknownIDErrors(t *testing.T) {
	tbl := newTable(newFakeMem())
	if err := tbl.Clear(99); err == nil {
		t.Fatalf("expected error clearing unknown id")
	}
}

func TestDisableThenEnableRoundTrips(t *testing.T) {
	mem := newFakeMem()
	mem.buf[0x4000] = 0x41

	tbl := newTable(mem)
	id, _ := tbl.Set(0x4000)

	if err := tbl.Disable(id); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	got, _ := mem.Read(0x4000, 1)
	if got[0] != 0x41 {
		t.Fatalf("memory after disable = %x, want 41", got[0])
	}

	if err := tbl.Enable(id); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	got, _ = mem.Read(0x4000, 1)
	if got[0] != 0xCC {
		t.Fatalf("memory after re-enable = %x, want CC", got[0])
	}
}

func TestAllPreservesInsertionOrder(t *testing.T) {
	mem := newFakeMem()
	tbl := newTable(mem)

	addrs := []uint64{0x500, 0x100, 0x900, 0x300}
	for _, a := range addrs {
		tbl.Set(a)
	}

	all := tbl.All()
	if len(all) != len(addrs) {
		t.Fatalf("got %d breakpoints, want %d", len(all), len(addrs))
	}
	for i, bp := range all {
		if bp.Addr != addrs[i] {
			t.Errorf("breakpoint[%d].Addr = %#x, want %#x", i, bp.Addr, addrs[i])
		}
	}
}

func TestClearAllRestoresEveryByte(t *testing.T) {
	mem := newFakeMem()
	mem.buf[0x10] = 0xAA
	mem.buf[0x20] = 0xBB

	tbl := newTable(mem)
	tbl.Set(0x10)
	tbl.Set(0x20)

	if err := tbl.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	b1, _ := mem.Read(0x10, 1)
	b2, _ := mem.Read(0x20, 1)
	if b1[0] != 0xAA || b2[0] != 0xBB {
		t.Fatalf("bytes not restored: %x %x", b1[0], b2[0])
	}
	if len(tbl.All()) != 0 {
		t.Fatalf("table not empty after ClearAll")
	}
}

func TestRegisterWithoutMemDoesNotPatch(t *testing.T) {
	tbl := breakpoint.New()
	id := tbl.Register(0x6000)
	if id != 1 {
		t.Fatalf("first registered id = %d, want 1", id)
	}

	bp, ok := tbl.Get(id)
	if !ok {
		t.Fatalf("registered breakpoint not tracked")
	}
	if bp.Enabled {
		t.Fatalf("breakpoint registered with no mem should be disabled")
	}
}

func TestEnableAfterSetMemPatchesRegisteredBreakpoint(t *testing.T) {
	tbl := breakpoint.New()
	id := tbl.Register(0x7000)

	mem := newFakeMem()
	mem.buf[0x7000] = 0x90
	tbl.SetMem(mem)

	if err := tbl.Enable(id); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	got, _ := mem.Read(0x7000, 1)
	if got[0] != 0xCC {
		t.Fatalf("memory after Enable = %x, want CC", got[0])
	}
}
