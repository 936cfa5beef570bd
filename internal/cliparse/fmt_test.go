package cliparse_test

import (
	"testing"

	"github.com/kwarrick/shortstop/internal/cliparse"
)

func bytep(b byte) *byte    { return &b }
func u64p(n uint64) *uint64 { return &n }

func TestParseFmt(t *testing.T) {
	f, err := cliparse.ParseFmt("32xw")
	if err != nil {
		t.Fatalf("ParseFmt: %v", err)
	}
	if f.Reverse || *f.Repeat != 32 || *f.Format != 'x' || *f.Size != 'w' {
		t.Fatalf("unexpected parse: %+v", f)
	}

	f2, err := cliparse.ParseFmt("-32wx")
	if err != nil {
		t.Fatalf("ParseFmt: %v", err)
	}
	if !f2.Reverse || *f2.Repeat != 32 || *f2.Format != 'x' || *f2.Size != 'w' {
		t.Fatalf("unexpected parse: %+v", f2)
	}
}

func TestParseFmtErrors(t *testing.T) {
	if _, err := cliparse.ParseFmt("32kx"); err == nil {
		t.Fatalf("expected error for invalid format letter")
	}
	if _, err := cliparse.ParseFmt("32wk"); err == nil {
		t.Fatalf("expected error for invalid size letter")
	}
}

func TestFmtUpdateOverlaySemantics(t *testing.T) {
	base := cliparse.Fmt{Repeat: u64p(4), Format: bytep('x'), Size: bytep('w')}
	base.Update(cliparse.Fmt{Repeat: u64p(8)})

	if *base.Repeat != 8 {
		t.Errorf("repeat not overlaid: got %d", *base.Repeat)
	}
	if *base.Format != 'x' {
		t.Errorf("format should be preserved: got %c", *base.Format)
	}
	if *base.Size != 'w' {
		t.Errorf("size should be preserved: got %c", *base.Size)
	}
}
