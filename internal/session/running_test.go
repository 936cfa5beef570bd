package session_test

import (
	"testing"

	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/debugger"
	"github.com/kwarrick/shortstop/internal/session"
)

func TestRunningPhaseContinueToExitTransitions(t *testing.T) {
	cfg := session.NewConfig()
	dbg := debugger.New("/bin/true", cfg.Breakpoints)
	if _, err := dbg.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer dbg.Kill()

	p := session.NewRunningPhase(cfg, alwaysYes{}, dbg)

	var ev session.Event
	var err error
	for i := 0; i < 1_000_000; i++ {
		ev, err = p.HandleCommand(cliparse.Cmd{Kind: cliparse.KindContinue, ContinueN: 1})
		if err != nil {
			t.Fatalf("HandleCommand: %v", err)
		}
		if ev.Kind == session.ProcessExited {
			return
		}
	}
	t.Fatalf("/bin/true never reported exit")
}

func TestRunningPhaseBreakAndInfoBreakpoints(t *testing.T) {
	cfg := session.NewConfig()
	dbg := debugger.New("/bin/true", cfg.Breakpoints)
	if _, err := dbg.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer dbg.Kill()

	p := session.NewRunningPhase(cfg, alwaysYes{}, dbg)

	pc, err := dbg.PC()
	if err != nil {
		t.Fatalf("PC: %v", err)
	}
	if _, err := p.HandleCommand(cliparse.Cmd{Kind: cliparse.KindBreak, BreakAddr: pc}); err != nil {
		t.Fatalf("HandleCommand break: %v", err)
	}
	if len(cfg.Breakpoints.All()) != 1 {
		t.Fatalf("expected 1 tracked breakpoint")
	}

	if _, err := p.HandleCommand(cliparse.Cmd{Kind: cliparse.KindInfoBreakpoints}); err != nil {
		t.Fatalf("HandleCommand info breakpoints: %v", err)
	}
}
