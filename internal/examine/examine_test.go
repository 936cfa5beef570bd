package examine_test

import (
	"strings"
	"testing"

	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/examine"
)

type fakeMem struct {
	data map[uint64]byte
}

func (m *fakeMem) Read(addr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.data[addr+uint64(i)]
	}
	return out, nil
}

func TestApplyRequiresAddressOnFirstUse(t *testing.T) {
	s := &examine.State{}
	if err := s.Apply(nil, nil); err == nil {
		t.Fatalf("expected error with no address ever supplied")
	}
}

func TestRenderDefaultsToWordHex(t *testing.T) {
	mem := &fakeMem{data: map[uint64]byte{
		0x1000: 0xef, 0x1001: 0xbe, 0x1002: 0xad, 0x1003: 0xde,
	}}
	s := &examine.State{}
	addr := uint64(0x1000)
	if err := s.Apply(nil, &addr); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	out, err := examine.Render(mem, s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "0x1000:") {
		t.Errorf("missing row address prefix: %q", out)
	}
	if !strings.Contains(out, "0xdeadbeef") {
		t.Errorf("expected little-endian word 0xdeadbeef in output: %q", out)
	}

	if *s.LastAddr != 0x1004 {
		t.Errorf("LastAddr after render = %#x, want 0x1004", *s.LastAddr)
	}
}

func TestRenderRespectsOverlaidRepeatAndSize(t *testing.T) {
	mem := &fakeMem{data: map[uint64]byte{
		0x2000: 0x01, 0x2001: 0x02, 0x2002: 0x03, 0x2003: 0x04,
	}}
	s := &examine.State{}
	addr := uint64(0x2000)
	if err := s.Apply(nil, &addr); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	f, err := cliparse.ParseFmt("4xb")
	if err != nil {
		t.Fatalf("ParseFmt: %v", err)
	}
	if err := s.Apply(&f, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	out, err := examine.Render(mem, s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "0x01") || !strings.Contains(out, "0x04") {
		t.Errorf("expected byte-sized values in output: %q", out)
	}
	if *s.LastAddr != 0x2004 {
		t.Errorf("LastAddr after render = %#x, want 0x2004", *s.LastAddr)
	}
}

func TestRenderReusesPriorAddressWhenNotGiven(t *testing.T) {
	mem := &fakeMem{data: map[uint64]byte{0x3000: 0x7, 0x3001: 0, 0x3002: 0, 0x3003: 0}}
	s := &examine.State{}
	addr := uint64(0x3000)
	if err := s.Apply(nil, &addr); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := examine.Render(mem, s); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if err := s.Apply(nil, nil); err != nil {
		t.Fatalf("Apply with no new address: %v", err)
	}
	if *s.LastAddr != 0x3004 {
		t.Fatalf("expected reuse of advanced address, got %#x", *s.LastAddr)
	}
}
