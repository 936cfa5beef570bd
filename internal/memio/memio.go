// Package memio provides word-granular reads and writes of a tracee's
// address space over ptrace peek/poke, including the read-modify-write
// needed for partial trailing words.
package memio

import (
	"github.com/kwarrick/shortstop/internal/dbgerr"
	"golang.org/x/sys/unix"
)

const wordSize = 8

// Memory reads and writes the address space of the process identified
// by Pid via ptrace. It does not retry on failure.
type Memory struct {
	Pid int
}

func (m *Memory) readWord(addr uint64) ([wordSize]byte, error) {
	var buf [wordSize]byte
	n, err := unix.PtracePeekData(m.Pid, uintptr(addr), buf[:])
	if err != nil || n != wordSize {
		return buf, &dbgerr.Read{Addr: addr, Err: err}
	}
	return buf, nil
}

func (m *Memory) writeWord(addr uint64, word [wordSize]byte) error {
	n, err := unix.PtracePokeData(m.Pid, uintptr(addr), word[:])
	if err != nil || n != wordSize {
		return &dbgerr.Write{Addr: addr, Err: err}
	}
	return nil
}

// Read fetches n bytes starting at addr, fetching whole machine words
// and truncating the final one. Words are little-endian on the wire;
// the returned slice preserves memory order.
func (m *Memory) Read(addr uint64, n int) ([]byte, error) {
	data := make([]byte, 0, n+wordSize)
	a := addr
	for len(data) < n {
		word, err := m.readWord(a)
		if err != nil {
			return nil, err
		}
		data = append(data, word[:]...)
		a += wordSize
	}
	return data[:n], nil
}

// Write stores data at addr, poking full 8-byte words and,
// for any trailing partial word, reading the existing word, overwriting
// only the leading bytes covered by data, and writing it back — so
// bytes past addr+len(data) are preserved. It returns the number of
// bytes written, which always equals len(data) on success.
func (m *Memory) Write(addr uint64, data []byte) (int, error) {
	full := len(data) / wordSize * wordSize

	for i := 0; i < full; i += wordSize {
		var word [wordSize]byte
		copy(word[:], data[i:i+wordSize])
		if err := m.writeWord(addr+uint64(i), word); err != nil {
			return i, err
		}
	}

	rem := data[full:]
	if len(rem) > 0 {
		tailAddr := addr + uint64(full)
		word, err := m.readWord(tailAddr)
		if err != nil {
			return full, err
		}
		copy(word[:], rem)
		if err := m.writeWord(tailAddr, word); err != nil {
			return full, err
		}
	}

	return len(data), nil
}
