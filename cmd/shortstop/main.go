// Command shortstop is a source-less ptrace debugger for Linux/x86-64
// ELF executables: `shortstop PROG [ARGS...]` loads PROG and drops into
// a GDB-flavored `(dbg) ` REPL.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kwarrick/shortstop/internal/cliparse"
	"github.com/kwarrick/shortstop/internal/dbgerr"
	"github.com/kwarrick/shortstop/internal/shell"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const historyFile = ".shortstop_history"

func main() {
	// ptrace(2) requires every call after PTRACE_TRACEME to come from
	// the same OS thread; lock here for the lifetime of the process,
	// mirroring jackc-delve/main.go's comment on the same constraint.
	runtime.LockOSThread()

	root := &cobra.Command{
		Use:   "shortstop PROG [ARGS...]",
		Short: "A source-less ptrace debugger for Linux/x86-64 executables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl(args[0], args[1:])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", dbgerr.Pretty(err))
		os.Exit(2)
	}
}

func repl(prog string, args []string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFilePath()
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	s := shell.New(&linerConfirmer{line: line})
	if err := s.Dispatch(cliparse.Cmd{Kind: cliparse.KindFile, FilePath: prog}); err != nil {
		return err
	}
	if len(args) > 0 {
		if err := s.Dispatch(cliparse.Cmd{Kind: cliparse.KindSetArgs, SetArgsArgs: args}); err != nil {
			return err
		}
	}

	for {
		cmdline, err := line.Prompt("(dbg) ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			if err == io.EOF {
				fmt.Println("quit")
				return nil
			}
			return err
		}

		if strings.TrimSpace(cmdline) != "" {
			line.AppendHistory(cmdline)
		}

		if err := s.HandleLine(cmdline); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", dbgerr.Pretty(err))
		}

		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

// linerConfirmer implements session.Confirmer against the REPL's own
// liner.State, reading one y/n character per spec.md's §6.5 prompt
// grammar: EOF defaults to yes, an aborted prompt (Ctrl-C) defaults to
// no, and any other invalid input reprompts.
type linerConfirmer struct {
	line *liner.State
}

func (c *linerConfirmer) Confirm(prompt string) bool {
	for {
		answer, err := c.line.Prompt(prompt + " (y or n) ")
		if err != nil {
			if err == io.EOF {
				fmt.Println("EOF [assumed Y]")
				return true
			}
			if err == liner.ErrPromptAborted {
				fmt.Println("Quit")
				return false
			}
			return false
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Println("Please answer y or n")
			continue
		}
	}
}
