// Package examine implements the x/FMT ADDR memory display mini-
// language: session-carried format state, overlay updates, and the
// row-wise hex rendering layout.
package examine

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/kwarrick/shortstop/internal/cliparse"
)

// Reader is the memory surface Render needs; internal/debugger and
// internal/memio both satisfy it.
type Reader interface {
	Read(addr uint64, n int) ([]byte, error)
}

// State carries the examine session's persistent context: the last
// format used (overlaid, never reset wholesale) and the last address
// displayed (advanced after every render).
type State struct {
	LastFmt  cliparse.Fmt
	LastAddr *uint64
}

func sizeWidth(c byte) int {
	switch c {
	case 'b':
		return 1
	case 'h':
		return 2
	case 'g':
		return 8
	default: // 'w' and the zero value both default to 4.
		return 4
	}
}

// Apply overlays patch onto the session's carried Fmt and resolves the
// starting address, returning an error if neither this call nor any
// prior call established one.
func (s *State) Apply(patch *cliparse.Fmt, addr *uint64) error {
	if patch != nil {
		s.LastFmt.Update(*patch)
	}
	if addr != nil {
		s.LastAddr = addr
	}
	if s.LastAddr == nil {
		return fmt.Errorf("Argument required (starting display address).")
	}
	return nil
}

// Render reads memory starting at the session's current address and
// formats it per the x/FMT layout algorithm, then advances the
// session's address by repeat*width.
func Render(mem Reader, s *State) (string, error) {
	repeat := uint64(1)
	if s.LastFmt.Repeat != nil {
		repeat = *s.LastFmt.Repeat
	}

	size := byte('w')
	if s.LastFmt.Size != nil {
		size = *s.LastFmt.Size
	}
	width := sizeWidth(size)
	cols := 8 / width

	format := byte('x')
	if s.LastFmt.Format != nil {
		format = *s.LastFmt.Format
	}

	addr := *s.LastAddr
	raw, err := mem.Read(addr, int(repeat)*width)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	col := 0
	for i := uint64(0); i < repeat; i++ {
		rowAddr := addr + i*uint64(width)
		if col == 0 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "0x%x:\t", rowAddr)
		} else {
			b.WriteString(" ")
		}

		chunk := raw[i*uint64(width) : i*uint64(width)+uint64(width)]
		value := readLittleEndian(chunk)
		b.WriteString(formatValue(value, width, format))

		col++
		if col == cols {
			col = 0
		}
	}

	s.LastAddr = new(uint64)
	*s.LastAddr = addr + repeat*uint64(width)

	return b.String(), nil
}

func readLittleEndian(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func formatValue(v uint64, width int, format byte) string {
	switch format {
	case 'x':
		return fmt.Sprintf("0x%0*x", width*2, v)
	default:
		// Only hex rendering is mandated; other format letters fall
		// back to the same width-padded hex representation.
		return fmt.Sprintf("0x%0*x", width*2, v)
	}
}
