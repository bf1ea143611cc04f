package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/help"
	"github.com/suykerbuyk/podseg/internal/logging"
)

// command runs one subcommand with the arguments that follow its name.
type command func(ctx context.Context, args []string) error

var commands = map[string]command{
	"init":       runInit,
	"convert":    runConvert,
	"clean":      runClean,
	"transcribe": runTranscribe,
	"segment":    runSegment,
	"wer":        runWER,
	"summarize":  runSummarize,
	"watch":      runWatch,
	"history":    runHistory,
	"archive":    runArchive,
	"check":      runCheck,
	"version":    runVersion,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := dispatch(ctx, os.Args[1], os.Args[2:])
	stop()
	exit(err)
}

func dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "help", "--help", "-h":
		return runHelp(args)
	}
	run, ok := commands[name]
	if !ok {
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		return usageErrorf("unknown command: %s", name)
	}
	return run(ctx, args)
}

func runHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))
		return nil
	}
	c, ok := help.Lookup(args[0])
	if !ok {
		return usageErrorf("no help for unknown command: %s", args[0])
	}
	fmt.Print(help.FormatTerminal(c))
	return nil
}

func runVersion(_ context.Context, args []string) error {
	fs := newFlagSet(help.CmdVersion)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	fmt.Printf("podseg v%s\n", help.Version)
	return nil
}

// usageError is a mistake on the command line; it exits 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// errSilent exits 1 without a message; the command already reported why.
var errSilent = errors.New("")

func exit(err error) {
	var ue *usageError
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errSilent):
		os.Exit(1)
	case errors.As(err, &ue):
		fatalCode(2, "%v", err)
	default:
		fatalCode(1, "%v", err)
	}
}

func fatalCode(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "podseg: "+format+"\n", args...)
	os.Exit(code)
}

// newFlagSet returns a flag set whose -h/--help prints the command's help.
func newFlagSet(c help.Command) *flag.FlagSet {
	fs := flag.NewFlagSet("podseg "+c.Name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, help.FormatTerminal(c))
	}
	return fs
}

// parseArgs parses flags that may appear before, between or after the
// positional arguments, and returns the positionals in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, &usageError{msg: err.Error()}
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// wantArgs checks the positional count against [lo, hi]; hi < 0 means
// unbounded.
func wantArgs(c help.Command, args []string, lo, hi int) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		return usageErrorf("usage: %s", c.Usage)
	}
	return nil
}

// setup loads the config and builds the logger every working command uses.
func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Log)
	if cfg.Path != "" {
		log.Debug().Str("path", cfg.Path).Msg("config loaded")
	}
	return cfg, log, nil
}
