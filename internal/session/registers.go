package session

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/sys/unix"
)

// registerOrder lists the general-purpose registers in the order
// `info registers` prints them with no NAMES filter, GDB's
// declaration-order layout for x86-64.
var registerOrder = []string{
	"rip", "rsp", "rbp", "rax", "rbx", "rcx", "rdx", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"eflags", "cs", "ss", "ds", "es", "fs", "gs",
}

// fieldName maps a lowercase register name to unix.PtraceRegs' Go
// field name, since the kernel struct capitalizes them (Rip, Rsp, ...).
func fieldName(reg string) string {
	return strings.ToUpper(reg[:1]) + reg[1:]
}

func regValue(regs *unix.PtraceRegs, name string) (uint64, bool) {
	v := reflect.ValueOf(regs).Elem()
	f := v.FieldByName(fieldName(name))
	if !f.IsValid() {
		return 0, false
	}
	return f.Uint(), true
}

// renderRegisters formats registers the way GDB's two-column `info
// registers` does: name, hex value, decimal value.
func renderRegisters(regs *unix.PtraceRegs, names []string) string {
	if len(names) == 0 {
		names = registerOrder
	}

	var b strings.Builder
	for _, name := range names {
		val, ok := regValue(regs, name)
		if !ok {
			fmt.Fprintf(&b, "Invalid register '%s'\n", name)
			continue
		}
		fmt.Fprintf(&b, "%-15s0x%-18x%d\n", name, val, val)
	}
	return b.String()
}

// renderBreakpoints formats the `info breakpoints` table in GDB's
// Num/Type/Disp/Enb/Address column layout (no What column), in table
// insertion order whether or not nums filters the rows.
func renderBreakpoints(cfg *Config, nums []uint) string {
	all := cfg.Breakpoints.All()
	if len(nums) > 0 {
		want := make(map[uint]bool, len(nums))
		for _, n := range nums {
			want[n] = true
		}
		filtered := all[:0:0]
		for _, bp := range all {
			if want[bp.ID] {
				filtered = append(filtered, bp)
			}
		}
		all = filtered
	}

	if len(all) == 0 {
		return "No breakpoints or watchpoints.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-7s %-14s %-4s %-3s %s\n", "Num", "Type", "Disp", "Enb", "Address")
	for _, bp := range all {
		enb := "n"
		if bp.Enabled {
			enb = "y"
		}
		fmt.Fprintf(&b, "%-7d %-14s %-4s %-3s 0x%016x\n", bp.ID, "breakpoint", "keep", enb, bp.Addr)
	}
	return b.String()
}
