package shell_test

import (
	"testing"

	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/session"
	"github.com/kwarrick/shortstop/internal/shell"
)

type alwaysYes struct{}

func (alwaysYes) Confirm(string) bool { return true }

func TestFileTransitionsEmptyToLoaded(t *testing.T) {
	s := shell.New(alwaysYes{})
	if err := s.HandleLine("file /bin/true"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := s.Phase().(*session.LoadedPhase); !ok {
		t.Fatalf("expected LoadedPhase, got %T", s.Phase())
	}
	if s.Phase().Config().Path != "/bin/true" {
		t.Fatalf("Path = %q", s.Phase().Config().Path)
	}
}

func TestRunTransitionsLoadedToRunningAndBackOnExit(t *testing.T) {
	s := shell.New(alwaysYes{})
	if err := s.HandleLine("file /bin/true"); err != nil {
		t.Fatalf("file: %v", err)
	}
	if err := s.HandleLine("run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	running, ok := s.Phase().(*session.RunningPhase)
	if !ok {
		t.Fatalf("expected RunningPhase, got %T", s.Phase())
	}
	defer running.Debugger().Kill()

	for i := 0; i < 1_000_000; i++ {
		if err := s.HandleLine("continue"); err != nil {
			t.Fatalf("continue: %v", err)
		}
		if _, ok := s.Phase().(*session.LoadedPhase); ok {
			return
		}
	}
	t.Fatalf("/bin/true never exited back to Loaded")
}

func TestUnloadedCommandsRejected(t *testing.T) {
	s := shell.New(alwaysYes{})
	if err := s.HandleLine("continue"); err == nil {
		t.Fatalf("expected NoExecutable error")
	}
}

func TestHelpDoesNotChangePhase(t *testing.T) {
	s := shell.New(alwaysYes{})
	if err := s.HandleLine("help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	if _, ok := s.Phase().(*session.EmptyPhase); !ok {
		t.Fatalf("expected EmptyPhase, got %T", s.Phase())
	}
}

func TestAmbiguousPrefixErrors(t *testing.T) {
	_, err := cliparse.ParseCommand("d 1")
	if err == nil {
		t.Fatalf("expected ambiguous-prefix error")
	}
}
