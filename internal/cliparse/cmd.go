// Package cliparse tokenizes and parses shortstop's REPL command
// grammar: address and FMT mini-languages, unique-prefix subcommand
// inference, and the x//p/ slash-to-space rewrite, built around a
// github.com/spf13/cobra command tree that supplies canonical verb
// names and help text the way cobra-based CLIs do for their own
// --help output.
package cliparse

import (
	"strconv"
	"strings"

	"github.com/kwarrick/shortstop/internal/dbgerr"
	"github.com/spf13/cobra"
)

// Kind discriminates the parsed Cmd variants, standing in for the
// original command grammar's enum of subcommands.
type Kind int

const (
	KindRepeat Kind = iota
	KindRun
	KindContinue
	KindStepi
	KindDelete
	KindDisable
	KindEnable
	KindBreak
	KindExamine
	KindFile
	KindSetArgs
	KindSetExpr
	KindInfoProcMappings
	KindInfoBreakpoints
	KindInfoRegisters
	KindHelp
)

// Cmd is one parsed REPL command line.
type Cmd struct {
	Kind Kind

	RunArgs       []string
	ContinueN     uint64
	StepiN        uint64
	Nums          []uint
	BreakAddr     uint64
	ExamineFmt    *Fmt
	ExamineAddr   *uint64
	FilePath      string
	SetArgsArgs   []string
	RegisterNames []string
}

// root is the cobra command tree used purely for its naming and help
// surface: Use/Short values drive `help` output and the set of legal
// verbs that prefix inference matches against. Argument binding for
// shortstop's custom address/FMT literals happens separately below,
// since cobra has no hook for a try_from_str-style typed positional
// parser.
func root() *cobra.Command {
	r := &cobra.Command{Use: "shortstop-repl"}

	r.AddCommand(
		&cobra.Command{Use: "run", Short: "Start debugged program"},
		&cobra.Command{Use: "continue", Short: "Continue program being debugged, after signal or breakpoint"},
		&cobra.Command{Use: "stepi", Short: "Step one instruction exactly"},
		&cobra.Command{Use: "delete", Short: "Delete some breakpoints"},
		&cobra.Command{Use: "disable", Short: "Disable some breakpoints"},
		&cobra.Command{Use: "enable", Short: "Enable some breakpoints"},
		&cobra.Command{Use: "break", Short: "Set breakpoint at specified location"},
		&cobra.Command{Use: "x", Short: "Examine memory"},
		&cobra.Command{Use: "file", Short: "Use file as program to be debugged"},
		&cobra.Command{Use: "help", Short: "Show this help"},
	)

	set := &cobra.Command{Use: "set", Short: "Commands that modify parts of the debug environment"}
	set.AddCommand(&cobra.Command{Use: "args", Short: "Set argument list to give program being debugged when it is started"})
	r.AddCommand(set)

	info := &cobra.Command{Use: "info", Short: "Generic command for showing things about the program being debugged"}
	info.AddCommand(
		&cobra.Command{Use: "breakpoints", Short: "Status of specified breakpoints"},
		&cobra.Command{Use: "registers", Short: "List of integer registers and their contents"},
	)
	proc := &cobra.Command{Use: "proc", Short: "Show /proc process information about any running process"}
	proc.AddCommand(&cobra.Command{Use: "mappings", Short: "List of mapped memory regions"})
	info.AddCommand(proc)
	r.AddCommand(info)

	return r
}

// Help renders the verb listing the way the original prompt's bare
// `help` showed its subcommand template.
func Help() string {
	var b strings.Builder
	for _, c := range root().Commands() {
		b.WriteString(c.Use)
		b.WriteString("\t")
		b.WriteString(c.Short)
		b.WriteString("\n")
	}
	return b.String()
}

// resolveVerb finds the unique child of cmd whose Use is a prefix
// match for token, the Go counterpart of structopt's InferSubcommands
// setting. An exact match always wins over a prefix match.
func resolveVerb(cmd *cobra.Command, token string) (*cobra.Command, error) {
	var matches []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.Use == token {
			return c, nil
		}
		if strings.HasPrefix(c.Use, token) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, dbgerr.Undefined(token)
	default:
		return nil, dbgerr.Undefined(token)
	}
}

// ParseCommand tokenizes and parses one REPL input line.
func ParseCommand(line string) (Cmd, error) {
	switch {
	case len(line) == 0:
		return Cmd{Kind: KindRepeat}, nil
	case len(line) == 1:
		return parseTokens([]string{line})
	default:
		rewritten := line
		if prefix := line[:2]; prefix == "x/" || prefix == "p/" {
			rewritten = strings.Replace(line, "/", " ", 1)
		}
		return parseTokens(strings.Fields(rewritten))
	}
}

func parseTokens(tokens []string) (Cmd, error) {
	if len(tokens) == 0 {
		return Cmd{Kind: KindRepeat}, nil
	}

	r := root()
	verb, err := resolveVerb(r, tokens[0])
	if err != nil {
		return Cmd{}, err
	}
	rest := tokens[1:]

	switch verb.Use {
	case "help":
		return Cmd{Kind: KindHelp}, nil

	case "run":
		return Cmd{Kind: KindRun, RunArgs: rest}, nil

	case "continue":
		n := uint64(1)
		if len(rest) > 0 {
			v, err := strconv.ParseUint(rest[0], 10, 64)
			if err != nil {
				return Cmd{}, err
			}
			n = v
		}
		return Cmd{Kind: KindContinue, ContinueN: n}, nil

	case "stepi":
		n := uint64(1)
		if len(rest) > 0 {
			v, err := strconv.ParseUint(rest[0], 10, 64)
			if err != nil {
				return Cmd{}, err
			}
			n = v
		}
		return Cmd{Kind: KindStepi, StepiN: n}, nil

	case "delete":
		nums, err := parseNums(rest)
		if err != nil {
			return Cmd{}, err
		}
		return Cmd{Kind: KindDelete, Nums: nums}, nil

	case "disable":
		nums, err := parseNums(rest)
		if err != nil {
			return Cmd{}, err
		}
		return Cmd{Kind: KindDisable, Nums: nums}, nil

	case "enable":
		nums, err := parseNums(rest)
		if err != nil {
			return Cmd{}, err
		}
		return Cmd{Kind: KindEnable, Nums: nums}, nil

	case "break":
		if len(rest) < 1 {
			return Cmd{}, dbgerr.Undefined("break")
		}
		addr, err := ParseAddr(rest[0])
		if err != nil {
			return Cmd{}, err
		}
		return Cmd{Kind: KindBreak, BreakAddr: addr}, nil

	case "x":
		c := Cmd{Kind: KindExamine}
		if len(rest) > 0 {
			f, err := ParseFmt(rest[0])
			if err != nil {
				return Cmd{}, err
			}
			c.ExamineFmt = &f
		}
		if len(rest) > 1 {
			addr, err := ParseAddr(rest[1])
			if err != nil {
				return Cmd{}, err
			}
			c.ExamineAddr = &addr
		}
		return c, nil

	case "file":
		if len(rest) < 1 {
			return Cmd{}, dbgerr.Undefined("file")
		}
		return Cmd{Kind: KindFile, FilePath: rest[0]}, nil

	case "set":
		return parseSet(verb, rest)

	case "info":
		return parseInfo(verb, rest)
	}

	return Cmd{}, dbgerr.Undefined(verb.Use)
}

func parseSet(set *cobra.Command, rest []string) (Cmd, error) {
	if len(rest) == 0 {
		return Cmd{Kind: KindSetExpr}, nil
	}
	sub, err := resolveVerb(set, rest[0])
	if err != nil {
		// Not a recognized "set" subcommand: treat the token as a
		// bare expression, which this grammar does not evaluate.
		return Cmd{Kind: KindSetExpr}, nil
	}
	switch sub.Use {
	case "args":
		return Cmd{Kind: KindSetArgs, SetArgsArgs: rest[1:]}, nil
	}
	return Cmd{}, dbgerr.Undefined(rest[0])
}

func parseInfo(info *cobra.Command, rest []string) (Cmd, error) {
	if len(rest) == 0 {
		return Cmd{}, dbgerr.Undefined("info")
	}
	sub, err := resolveVerb(info, rest[0])
	if err != nil {
		return Cmd{}, err
	}
	switch sub.Use {
	case "breakpoints":
		nums, err := parseNums(rest[1:])
		if err != nil {
			return Cmd{}, err
		}
		return Cmd{Kind: KindInfoBreakpoints, Nums: nums}, nil
	case "registers":
		return Cmd{Kind: KindInfoRegisters, RegisterNames: rest[1:]}, nil
	case "proc":
		if len(rest) < 2 {
			return Cmd{}, dbgerr.Undefined("proc")
		}
		procSub, err := resolveVerb(sub, rest[1])
		if err != nil {
			return Cmd{}, err
		}
		if procSub.Use == "mappings" {
			return Cmd{Kind: KindInfoProcMappings}, nil
		}
		return Cmd{}, dbgerr.Undefined(rest[1])
	}
	return Cmd{}, dbgerr.Undefined(rest[0])
}

func parseNums(tokens []string) ([]uint, error) {
	nums := make([]uint, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, err
		}
		nums = append(nums, uint(n))
	}
	return nums, nil
}
