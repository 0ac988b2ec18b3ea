package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/calculator"
	"github.com/zephyrtronium/calculator/internal/config"
	"github.com/zephyrtronium/calculator/internal/history"
)

// errFailed reports that at least one expression failed to evaluate.
var errFailed = errors.New("some expressions failed")

var errColor = color.New(color.FgRed)

type options struct {
	configPath  string
	historyPath string
	backend     string
	noHistory   bool
	logLevel    string
	in          string
	lines       bool
	verb        string
	verbose     bool
}

// app is everything a command needs once flags are parsed.
type app struct {
	opts   *options
	cfg    *config.Config
	hist   *history.History
	log    *slog.Logger
	out    io.Writer
	errOut io.Writer
	failed bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "calc [expression...]",
		Short: "Evaluate arithmetic expressions",
		Long: `calc evaluates infix arithmetic expressions using + - * / % ^ and parentheses.

Every operator groups left to right, so 2^3^2 is 64. With no arguments, calc
reads one expression per line from standard input. Results are recorded in
the calculation history unless --no-history is given.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, &opts, !opts.noHistory)
			if err != nil {
				return err
			}
			defer a.close()
			return a.run(cmd.Context(), cmd.InOrStdin(), args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "configuration file (default "+config.DefaultPath()+")")
	pf.StringVar(&opts.historyPath, "history", "", "history file (default in "+config.StateDir()+")")
	pf.StringVar(&opts.backend, "backend", "", "history backend, json or sqlite (default from configuration)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, or error (default from configuration)")

	f := cmd.Flags()
	f.BoolVar(&opts.noHistory, "no-history", false, "don't record results in the history")
	f.StringVar(&opts.in, "in", "", "read expressions from a file, or - for stdin")
	f.BoolVarP(&opts.lines, "lines", "n", false, "with --in, treat each line as a separate expression")
	f.StringVar(&opts.verb, "fmt", "", "fmt verb for printing results, e.g. %.3f")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print the full error for failed expressions")

	cmd.AddCommand(newHistoryCmd(&opts), newConfigCmd(&opts))
	return cmd
}

// setup loads configuration and, if withHistory, opens the history.
func setup(cmd *cobra.Command, opts *options, withHistory bool) (*app, error) {
	a := &app{opts: opts, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	var lvl slog.LevelVar
	if opts.logLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(opts.logLevel)); err != nil {
			return nil, fmt.Errorf("bad --log-level: %w", err)
		}
		lvl.Set(l)
	}
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: &lvl}))

	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, a.log)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	if opts.logLevel == "" {
		lvl.Set(cfg.LogLevel())
	}

	if !withHistory {
		return a, nil
	}
	backend := opts.backend
	if backend == "" {
		backend = cfg.HistoryBackend()
	}
	hpath := opts.historyPath
	if hpath == "" {
		hpath = defaultHistoryPath(backend)
	}
	a.hist, err = history.Open(backend, hpath, cfg.MaxHistorySize(), a.log)
	if err != nil {
		return nil, err
	}
	a.log.Debug("history opened", slog.String("backend", backend), slog.String("path", hpath))
	return a, nil
}

func defaultHistoryPath(backend string) string {
	name := "history.json"
	if backend == "sqlite" {
		name = "history.db"
	}
	return filepath.Join(config.StateDir(), name)
}

func (a *app) close() {
	if a.hist == nil {
		return
	}
	if err := a.hist.Close(); err != nil {
		a.log.Warn("couldn't close history", slog.Any("err", err))
	}
}

func (a *app) run(ctx context.Context, stdin io.Reader, args []string) error {
	switch {
	case len(args) > 0:
		for _, arg := range args {
			a.eval(arg)
		}
	case a.opts.in != "":
		in := stdin
		if a.opts.in != "-" {
			f, err := os.Open(a.opts.in)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		if a.opts.lines {
			if err := a.readLines(in, false); err != nil {
				return err
			}
			break
		}
		b, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		a.eval(string(b))
	default:
		interactive := isTerminal(stdin)
		if interactive {
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go a.watchConfig(ctx)
		}
		if err := a.readLines(stdin, interactive); err != nil {
			return err
		}
	}
	if a.failed {
		return errFailed
	}
	return nil
}

// watchConfig applies configuration edits made while a session is open.
func (a *app) watchConfig(ctx context.Context) {
	err := a.cfg.Watch(ctx, func(c *config.Config) {
		if a.hist != nil {
			a.hist.SetMax(c.MaxHistorySize())
		}
	})
	if err != nil {
		a.log.Warn("not watching configuration", slog.Any("err", err))
	}
}

// readLines evaluates each non-blank line of r. With prompt, it prints a
// prompt before each line and accepts the commands "history" and "exit".
func (a *app) readLines(r io.Reader, prompt bool) error {
	sc := bufio.NewScanner(r)
	for {
		if prompt {
			fmt.Fprint(a.out, "> ")
		}
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if prompt {
			switch line {
			case "exit", "quit":
				return nil
			case "history":
				a.printHistory(0)
				continue
			}
		}
		a.eval(line)
	}
	if prompt {
		fmt.Fprintln(a.out)
	}
	return sc.Err()
}

// eval evaluates and reports a single expression.
func (a *app) eval(expr string) {
	r, err := calculator.Evaluate(expr)
	if err != nil {
		a.failed = true
		a.log.Debug("evaluation failed", slog.String("expr", expr), slog.Any("err", err))
		msg := calculator.MessageFor(err, a.cfg)
		if a.opts.verbose {
			msg += ": " + err.Error()
		}
		errColor.Fprintln(a.errOut, msg)
		return
	}
	s := calculator.FormatResult(r)
	if a.opts.verb != "" {
		fmt.Fprintf(a.out, a.opts.verb+"\n", r)
	} else {
		fmt.Fprintln(a.out, s)
	}
	if a.hist != nil {
		// Add logs its own failures.
		a.hist.Add(strings.TrimSpace(expr), s)
	}
}

func (a *app) printHistory(last int) {
	if a.hist == nil {
		return
	}
	entries := a.hist.All()
	if last > 0 {
		entries = a.hist.Recent(last)
	}
	for _, e := range entries {
		fmt.Fprintln(a.out, e)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
