package session

import (
	"fmt"

	"github.com/kwarrick/shortstop/internal/cliparse"
)

// LoadedPhase is a program resolved but not yet running: File, Set,
// Break/Delete/Disable/Enable, and Run are legal; Examine is dispatched
// but fails with "The program is not being run." because there is no
// tracee memory to read; Continue/Stepi/Info are rejected with the
// same message.
type LoadedPhase struct {
	cfg       *Config
	confirmer Confirmer
}

// NewLoadedPhase transitions cfg into Loaded for the binary at path.
func NewLoadedPhase(cfg *Config, confirmer Confirmer, path string) *LoadedPhase {
	cfg.Path = path
	return &LoadedPhase{cfg: cfg, confirmer: confirmer}
}

func (p *LoadedPhase) Config() *Config { return p.cfg }

func (p *LoadedPhase) HandleCommand(cmd cliparse.Cmd) (Event, error) {
	switch cmd.Kind {
	case cliparse.KindRepeat, cliparse.KindHelp:
		return Event{}, nil

	case cliparse.KindFile:
		if !p.confirmer.Confirm("A program is being debugged already.\nAre you sure you want to change the file?") {
			return Event{}, nil
		}
		p.cfg.Path = cmd.FilePath
		return Event{Kind: Opened, Path: cmd.FilePath}, nil

	case cliparse.KindSetArgs:
		p.cfg.Args = cmd.SetArgsArgs
		return Event{}, nil

	case cliparse.KindSetExpr:
		return Event{}, setExprError()

	case cliparse.KindBreak:
		p.cfg.Breakpoints.Register(cmd.BreakAddr)
		return Event{}, nil

	case cliparse.KindDelete:
		return Event{}, deleteBreakpoints(p.cfg, p.confirmer, cmd.Nums)

	case cliparse.KindDisable:
		return Event{}, disableBreakpoints(p.cfg, cmd.Nums)

	case cliparse.KindEnable:
		return Event{}, enableBreakpoints(p.cfg, cmd.Nums)

	case cliparse.KindExamine:
		return Event{}, examineCommand(nil, p.cfg, cmd)

	case cliparse.KindRun:
		if len(cmd.RunArgs) > 0 {
			p.cfg.Args = cmd.RunArgs
		}
		return Event{Kind: Started}, nil

	default:
		return Event{}, notRunning()
	}
}

// deleteBreakpoints clears the given breakpoint ids, or every tracked
// breakpoint if nums is empty -- the delete-all path asks for
// confirmation first, per the spec's "after a Yes/No prompt" rule.
func deleteBreakpoints(cfg *Config, confirmer Confirmer, nums []uint) error {
	if len(nums) == 0 {
		all := cfg.Breakpoints.All()
		if len(all) == 0 {
			return nil
		}
		if !confirmer.Confirm("Delete all breakpoints?") {
			return nil
		}
		for _, bp := range all {
			if err := cfg.Breakpoints.Clear(bp.ID); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range nums {
		if err := cfg.Breakpoints.Clear(id); err != nil {
			return err
		}
	}
	return nil
}

func disableBreakpoints(cfg *Config, nums []uint) error {
	if len(nums) == 0 {
		for _, bp := range cfg.Breakpoints.All() {
			if err := cfg.Breakpoints.Disable(bp.ID); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range nums {
		if err := cfg.Breakpoints.Disable(id); err != nil {
			return err
		}
	}
	return nil
}

func enableBreakpoints(cfg *Config, nums []uint) error {
	if len(nums) == 0 {
		for _, bp := range cfg.Breakpoints.All() {
			if err := cfg.Breakpoints.Enable(bp.ID); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range nums {
		if err := cfg.Breakpoints.Enable(id); err != nil {
			return err
		}
	}
	return nil
}

// examineCommand renders x/FMT ADDR against mem, or fails with
// NotRunning when mem is nil (the Loaded phase has no tracee to read).
func examineCommand(mem examineReader, cfg *Config, cmd cliparse.Cmd) error {
	if mem == nil {
		return notRunning()
	}
	if err := cfg.Examine.Apply(cmd.ExamineFmt, cmd.ExamineAddr); err != nil {
		return err
	}
	out, err := renderExamine(mem, cfg)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
