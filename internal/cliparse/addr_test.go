package cliparse_test

import (
	"testing"

	"github.com/kwarrick/shortstop/internal/cliparse"
)

func TestParseAddr(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0x1000", 0x1000},
		{"0b1010", 0b1010},
		{"0o1111", 0o1111},
		{"1234", 1234},
		{"0X1A", 0x1a},
	}
	for _, c := range cases {
		got, err := cliparse.ParseAddr(c.in)
		if err != nil {
			t.Errorf("ParseAddr(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAddr(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseAddrEmptyErrors(t *testing.T) {
	if _, err := cliparse.ParseAddr(""); err == nil {
		t.Fatalf("expected error for empty address string")
	}
}
