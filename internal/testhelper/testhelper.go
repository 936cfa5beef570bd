// Package testhelper spawns a traced child process for package tests
// that need a live tracee, mirroring the fixture harness jackc-delve's
// proctl tests used (helper.WithTestProcess), adapted for fork/exec
// under PTRACE_TRACEME instead of attach-to-running-pid.
package testhelper

import (
	"os"
	"os/exec"
	"testing"

	"golang.org/x/sys/unix"
)

// WithTestProcess builds the fixture at path (a .go source file under
// _fixtures/), starts it under ptrace, waits for the initial
// exec-stop, and invokes fn with the resulting pid. The process is
// killed and reaped on return.
func WithTestProcess(t *testing.T, path string, fn func(pid int)) {
	t.Helper()

	bin, err := os.CreateTemp("", "shortstop-fixture-*")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	bin.Close()
	defer os.Remove(bin.Name())

	build := exec.Command("go", "build", "-o", bin.Name(), path)
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build %s: %v\n%s", path, err, out)
	}

	cmd := exec.Command(bin.Name())
	cmd.SysProcAttr = &unix.SysProcAttr{Ptrace: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start fixture: %v", err)
	}
	pid := cmd.Process.Pid

	var status unix.WaitStatus
	if _, err := unix.Wait4(pid, &status, 0, nil); err != nil {
		t.Fatalf("initial wait: %v", err)
	}

	defer func() {
		unix.Kill(pid, unix.SIGKILL)
		var ws unix.WaitStatus
		unix.Wait4(pid, &ws, 0, nil)
	}()

	fn(pid)
}
