package session

import (
	"fmt"

	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/dbgerr"
	"github.com/kwarrick/shortstop/internal/debugger"
	"github.com/kwarrick/shortstop/internal/procfs"
	"github.com/kwarrick/shortstop/internal/tracee"
)

// RunningPhase has a live tracee: every command is legal.
type RunningPhase struct {
	cfg       *Config
	confirmer Confirmer
	dbg       *debugger.Debugger
}

// NewRunningPhase transitions cfg into Running with dbg already
// started.
func NewRunningPhase(cfg *Config, confirmer Confirmer, dbg *debugger.Debugger) *RunningPhase {
	return &RunningPhase{cfg: cfg, confirmer: confirmer, dbg: dbg}
}

func (p *RunningPhase) Config() *Config              { return p.cfg }
func (p *RunningPhase) Debugger() *debugger.Debugger { return p.dbg }

func (p *RunningPhase) HandleCommand(cmd cliparse.Cmd) (Event, error) {
	switch cmd.Kind {
	case cliparse.KindRepeat, cliparse.KindHelp:
		return Event{}, nil

	case cliparse.KindFile:
		if !p.confirmer.Confirm("A program is being debugged already.\nAre you sure you want to change the file?") {
			return Event{}, nil
		}
		p.dbg.Kill()
		p.cfg.Path = cmd.FilePath
		return Event{Kind: Opened, Path: cmd.FilePath}, nil

	case cliparse.KindSetArgs:
		p.cfg.Args = cmd.SetArgsArgs
		return Event{}, nil

	case cliparse.KindSetExpr:
		return Event{}, setExprError()

	case cliparse.KindRun:
		if !p.confirmer.Confirm("The program being debugged has been started already.\nStart it from the beginning?") {
			fmt.Println("Program not restarted.")
			return Event{}, nil
		}
		args := p.cfg.Args
		if len(cmd.RunArgs) > 0 {
			args = cmd.RunArgs
			p.cfg.Args = args
		}
		ev, err := p.dbg.Run(args)
		if err != nil {
			return Event{}, err
		}
		return exitEventOr(ev, Event{}), nil

	case cliparse.KindContinue:
		return p.runLoop(cmd.ContinueN, func() (tracee.Event, error) { return p.dbg.Continue() })

	case cliparse.KindStepi:
		return p.runLoop(cmd.StepiN, func() (tracee.Event, error) { return p.dbg.Step() })

	case cliparse.KindBreak:
		if _, err := p.dbg.Break(cmd.BreakAddr); err != nil {
			return Event{}, err
		}
		return Event{}, nil

	case cliparse.KindDelete:
		return Event{}, deleteBreakpoints(p.cfg, p.confirmer, cmd.Nums)

	case cliparse.KindDisable:
		return Event{}, disableBreakpoints(p.cfg, cmd.Nums)

	case cliparse.KindEnable:
		return Event{}, enableBreakpoints(p.cfg, cmd.Nums)

	case cliparse.KindExamine:
		return Event{}, examineCommand(p.dbg, p.cfg, cmd)

	case cliparse.KindInfoProcMappings:
		maps, err := (procfs.OSMapsReader{}).ProcMaps(p.dbg.Pid())
		if err != nil {
			return Event{}, err
		}
		fmt.Print(procfs.Render(maps))
		return Event{}, nil

	case cliparse.KindInfoBreakpoints:
		fmt.Print(renderBreakpoints(p.cfg, cmd.Nums))
		return Event{}, nil

	case cliparse.KindInfoRegisters:
		regs, err := p.dbg.Regs()
		if err != nil {
			return Event{}, err
		}
		fmt.Print(renderRegisters(regs, cmd.RegisterNames))
		return Event{}, nil

	default:
		return Event{}, dbgerr.Undefined(fmt.Sprintf("kind %d", cmd.Kind))
	}
}

// runLoop issues n continues (or single-steps, via step), stopping
// early the moment the tracee exits, and reports breakpoint stops the
// way the spec's "Breakpoint {id}, 0x{addr:x} in ??" line does.
func (p *RunningPhase) runLoop(n uint64, step func() (tracee.Event, error)) (Event, error) {
	if n == 0 {
		n = 1
	}
	var last tracee.Event
	for i := uint64(0); i < n; i++ {
		ev, err := step()
		if err != nil {
			return Event{}, err
		}
		last = ev
		if ev.Kind == tracee.Exited {
			break
		}
		if ev.Kind == tracee.Stopped {
			if pc, err := p.dbg.PC(); err == nil {
				if bp, ok := p.cfg.Breakpoints.At(pc); ok {
					fmt.Printf("Breakpoint %d, 0x%x in ??\n", bp.ID, bp.Addr)
				}
			}
		}
	}
	if last.Kind == tracee.Exited {
		fmt.Printf("[Inferior 1 (process %d) exited normally]\n", last.Pid)
		return Event{Kind: ProcessExited}, nil
	}
	return Event{}, nil
}

func exitEventOr(ev tracee.Event, fallback Event) Event {
	if ev.Kind == tracee.Exited {
		return Event{Kind: ProcessExited}
	}
	return fallback
}
