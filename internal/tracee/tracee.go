// Package tracee owns the lifecycle of a single debugged process:
// fork/exec under ptrace, wait-event interpretation, signal
// demultiplexing, and teardown.
package tracee

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/kwarrick/shortstop/internal/dbgerr"
	"github.com/kwarrick/shortstop/internal/memio"
	"golang.org/x/sys/unix"
)

// Kind classifies a wait event.
type Kind int

const (
	Stopped Kind = iota
	Exited
	Signal
)

// Event is emitted by Run/Cont/Step.
type Event struct {
	Kind Kind
	Pid  int
	Code int
	Sig  unix.Signal
}

// Tracee owns one debuggee process. The zero value is a Tracee with no
// live process; ProgPath must be set before Run.
type Tracee struct {
	ProgPath string

	cmd *exec.Cmd
	pid int
}

// New returns a Tracee for the executable at progPath.
func New(progPath string) *Tracee {
	return &Tracee{ProgPath: progPath}
}

// FromPid wraps an already-traced, already-stopped pid. Tests that
// spawn a fixture process themselves use this to exercise the
// register/step/cont surface without a second fork/exec.
func FromPid(pid int) *Tracee {
	return &Tracee{pid: pid}
}

// Pid is the tracee's process id, or 0 if none is live.
func (t *Tracee) Pid() int { return t.pid }

// Alive reports whether a tracee process is currently live.
func (t *Tracee) Alive() bool { return t.pid != 0 }

// Run forks the child, has it PTRACE_TRACEME then execve prog with
// argv[0] = prog and the given args, and waits for the initial
// exec-stop. The tracee is paused at (or just before) the dynamic
// loader's _start. Any previously live tracee must be killed first by
// the caller.
func (t *Tracee) Run(args []string) (Event, error) {
	cmd := exec.Command(t.ProgPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// exec.Cmd's Ptrace flag performs PTRACE_TRACEME in the child
	// before execve, the Go-idiomatic equivalent of the classic
	// fork()+ptrace(PTRACE_TRACEME)+execvp() dance.
	cmd.SysProcAttr = &unix.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return Event{}, err
	}

	t.cmd = cmd
	t.pid = cmd.Process.Pid

	var status unix.WaitStatus
	if _, err := unix.Wait4(t.pid, &status, 0, nil); err != nil {
		return Event{}, err
	}

	if err := unix.PtraceSetOptions(t.pid, unix.PTRACE_O_EXITKILL|unix.PTRACE_O_TRACECLONE); err != nil {
		return Event{}, err
	}

	return Event{Kind: Stopped, Pid: t.pid}, nil
}

// PC reads rip from the tracee's general-purpose registers.
func (t *Tracee) PC() (uint64, error) {
	regs, err := t.Regs()
	if err != nil {
		return 0, err
	}
	return regs.Rip, nil
}

// Regs fetches the tracee's general-purpose register set.
func (t *Tracee) Regs() (*unix.PtraceRegs, error) {
	if !t.Alive() {
		return nil, &dbgerr.NotRunning{}
	}
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(t.pid, &regs); err != nil {
		return nil, err
	}
	return &regs, nil
}

// SetRegs stores the tracee's general-purpose register set.
func (t *Tracee) SetRegs(regs *unix.PtraceRegs) error {
	if !t.Alive() {
		return &dbgerr.NotRunning{}
	}
	return unix.PtraceSetRegs(t.pid, regs)
}

// Cont issues PTRACE_CONT with no pending signal and waits for the next
// event.
func (t *Tracee) Cont() (Event, error) {
	if !t.Alive() {
		return Event{}, &dbgerr.NotRunning{}
	}
	if err := unix.PtraceCont(t.pid, 0); err != nil {
		return Event{}, err
	}
	return t.wait()
}

// Step issues PTRACE_SINGLESTEP and waits for the next event.
func (t *Tracee) Step() (Event, error) {
	if !t.Alive() {
		return Event{}, &dbgerr.NotRunning{}
	}
	if err := unix.PtraceSingleStep(t.pid); err != nil {
		return Event{}, err
	}
	return t.wait()
}

// Kill sends SIGKILL and reaps the tracee. Safe to call when no tracee
// is live.
func (t *Tracee) Kill() {
	if !t.Alive() {
		return
	}
	pid := t.pid
	unix.Kill(pid, unix.SIGKILL)
	var status unix.WaitStatus
	unix.Wait4(pid, &status, 0, nil)
	t.pid = 0
}

func (t *Tracee) wait() (Event, error) {
	var status unix.WaitStatus
	if _, err := unix.Wait4(t.pid, &status, 0, nil); err != nil {
		return Event{}, err
	}

	switch {
	case status.Exited():
		pid := t.pid
		t.pid = 0
		return Event{Kind: Exited, Pid: pid, Code: status.ExitStatus()}, nil

	case status.Stopped() && status.StopSignal() == unix.SIGTRAP:
		if status.TrapCause() == unix.PTRACE_EVENT_CLONE {
			return Event{}, &dbgerr.ProcessEvent{Detail: "clone event on a single-threaded tracee"}
		}
		if err := t.rewindBreakpointTrap(); err != nil {
			return Event{}, err
		}
		return Event{Kind: Stopped, Pid: t.pid}, nil

	case status.Signaled():
		return Event{Kind: Signal, Sig: status.Signal()}, nil

	default:
		return Event{}, &dbgerr.ProcessEvent{Detail: fmt.Sprintf("unrecognized wait status %#x", uint32(status))}
	}
}

// rewindBreakpointTrap inspects the byte just executed; if it is an
// int3 (0xCC) left by a software breakpoint, rip is decremented by one
// so the logical program counter points back at the patched address.
func (t *Tracee) rewindBreakpointTrap() error {
	regs, err := t.Regs()
	if err != nil {
		return err
	}

	mem := &memio.Memory{Pid: t.pid}
	b, err := mem.Read(regs.Rip-1, 1)
	if err != nil || len(b) != 1 || b[0] != 0xCC {
		return nil
	}

	regs.Rip--
	return t.SetRegs(regs)
}
