package cliparse

import (
	"fmt"
	"strings"
)

// Fmt is the parsed form of x/FMT and p/FMT: an optional repeat count,
// output size, and output format, plus a reverse flag. Fields left
// unset by a parse are nil/zero so Update can overlay a prior Fmt.
type Fmt struct {
	Reverse bool
	Repeat  *uint64
	Format  *byte
	Size    *byte
}

// Update overlays other onto f: reverse is always replaced, while
// repeat/format/size are only replaced when other sets them. This is
// how `x/4` after `x/4xb` remembers format and size but resets repeat.
func (f *Fmt) Update(other Fmt) {
	f.Reverse = other.Reverse
	if other.Repeat != nil {
		f.Repeat = other.Repeat
	}
	if other.Format != nil {
		f.Format = other.Format
	}
	if other.Size != nil {
		f.Size = other.Size
	}
}

func isSizeLetter(c byte) bool {
	switch c {
	case 'b', 'h', 'w', 'g':
		return true
	}
	return false
}

func isFormatLetter(c byte) bool {
	switch c {
	case 'o', 'x', 'd', 'u', 't', 'f', 'a', 'i', 'c', 's', 'z':
		return true
	}
	return false
}

// ParseFmt parses a FMT token such as "32xw" or "-8gx" into a Fmt.
func ParseFmt(arg string) (Fmt, error) {
	var f Fmt

	s := arg
	if strings.HasPrefix(s, "-") {
		f.Reverse = true
		s = strings.TrimPrefix(s, "-")
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 {
		var n uint64
		if _, err := fmt.Sscanf(s[:i], "%d", &n); err != nil {
			return Fmt{}, err
		}
		f.Repeat = &n
		s = s[i:]
	}

	letters := s
	if len(letters) > 2 {
		letters = letters[:2]
	}
	for idx := 0; idx < len(letters); idx++ {
		c := letters[idx]
		switch {
		case isSizeLetter(c):
			cc := c
			f.Size = &cc
		case isFormatLetter(c):
			cc := c
			f.Format = &cc
		case idx == 0:
			return Fmt{}, fmt.Errorf("Invalid output format: %c", c)
		default:
			return Fmt{}, fmt.Errorf("Invalid output size: %c", c)
		}
	}

	return f, nil
}
