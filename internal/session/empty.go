package session

import (
	"github.com/kwarrick/shortstop/internal/cliparse"
)

// EmptyPhase is the session before any executable has been loaded. It
// accepts only File, Set, and Repeat.
type EmptyPhase struct {
	cfg *Config
}

// NewEmptyPhase returns a fresh session with no file loaded.
func NewEmptyPhase() *EmptyPhase {
	return &EmptyPhase{cfg: NewConfig()}
}

func (p *EmptyPhase) Config() *Config { return p.cfg }

func (p *EmptyPhase) HandleCommand(cmd cliparse.Cmd) (Event, error) {
	switch cmd.Kind {
	case cliparse.KindRepeat, cliparse.KindHelp:
		return Event{}, nil

	case cliparse.KindFile:
		p.cfg.Path = cmd.FilePath
		return Event{Kind: Opened, Path: cmd.FilePath}, nil

	case cliparse.KindSetArgs:
		p.cfg.Args = cmd.SetArgsArgs
		return Event{}, nil

	case cliparse.KindSetExpr:
		return Event{}, setExprError()

	default:
		return Event{}, noExecutable()
	}
}
