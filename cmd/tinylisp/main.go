package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/jnickelsen-successor/tinylisp"
)

func main() {
	app := &cli.App{
		Name:  "tinylisp",
		Usage: "a tree-walking Lisp interpreter",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "force the REPL after loading any files"},
			&cli.BoolFlag{Name: "trace", Aliases: []string{"t"}, Usage: "trace eval/apply/bind"},
			&cli.IntFlag{Name: "gc-threshold", Value: 10000, Usage: "allocations between collections"},
		},
		ArgsUsage: "[file...]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := tinylisp.NewConfig()
	cfg.SetBool("eval.trace", c.Bool("trace"))
	cfg.SetInt("gc.threshold", c.Int("gc-threshold"))

	in := tinylisp.NewInterpreter(cfg)

	files := c.Args().Slice()
	var lastVal tinylisp.Value = in.Nil
	for _, path := range files {
		v, err := loadAndReportErrors(in, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tinylisp: %s: %v\n", path, err)
			return cli.Exit("", 1)
		}
		lastVal = v
	}

	if len(files) == 0 || c.Bool("interactive") {
		var err error
		lastVal, err = repl(in)
		if err != nil && err != io.EOF {
			return cli.Exit(err.Error(), 1)
		}
	}

	if lastVal == in.Nil {
		return cli.Exit("", 0)
	}
	return cli.Exit("", 1)
}

// loadAndReportErrors runs a file and returns the last value it
// evaluated, folding in.LoadFile's per-form evaluation so the exit
// status can inspect what the script actually produced.
func loadAndReportErrors(in *tinylisp.Interpreter, path string) (tinylisp.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	port := in.NewStreamPort(path, f, nil)
	sess := tinylisp.NewSession(in, port)
	var last tinylisp.Value = in.Nil
	for {
		v, eof, err := sess.ReadEvalPrint()
		if eof {
			return last, nil
		}
		if err != nil {
			return nil, err
		}
		last = v
	}
}

// repl drives an interactive read-eval-print loop over chzyer/readline,
// the same "drop into a lil shell" idea the teacher's -interactive flag
// implements with a raw bufio.Reader, upgraded here to line editing and
// history since tinylisp is meant to be used as a REPL first.
func repl(in *tinylisp.Interpreter) (tinylisp.Value, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tinylisp> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return nil, err
	}
	defer rl.Close()

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		rl.Config.Prompt = ""
	}

	var last tinylisp.Value = in.Nil
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return last, nil
		}
		if err != nil {
			return last, err
		}
		if line == "" {
			continue
		}
		port := in.NewStringPort(false)
		port.Buf.Buf = append(port.Buf.Buf, line...)
		sess := tinylisp.NewSession(in, port)
		for {
			v, eof, err := sess.ReadEvalPrint()
			if eof {
				break
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				break
			}
			last = v
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tinylisp_history"
	}
	return home + "/.tinylisp_history"
}
