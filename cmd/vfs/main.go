// vfs manages block-addressed virtual archives from the command line.
//
// Usage:
//
//	vfs [flags] ARCHIVE COMMAND [ARGS]
//
// ARCHIVE is a path prefix; the archive lives in ARCHIVE.structure and
// ARCHIVE.store. Each invocation loads the archive, runs one command and
// exits with a code describing the outcome (see exit.go).
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/meigma/vfs"
	"github.com/meigma/vfs/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds parsed global flags.
type options struct {
	configPath string
	logLevel   string
	human      bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	var help bool

	flagSet := pflag.NewFlagSet("vfs", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "path to YAML config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flagSet.BoolVar(&opts.human, "human", false, "print byte counts in human-readable units")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, flagSet)
			return exitOK
		}
		fmt.Fprintf(stderr, "vfs: %v\n", err)
		printUsage(stderr, flagSet)
		return exitUsage
	}
	if help {
		printUsage(stdout, flagSet)
		return exitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "vfs: %v\n", err)
		return exitUsage
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "vfs: --log-level: %v\n", err)
			return exitUsage
		}
	}

	positional := flagSet.Args()
	if len(positional) < 2 {
		printUsage(stderr, flagSet)
		return exitUsage
	}

	inv := &invocation{
		archivePath: positional[0],
		args:        positional[2:],
		human:       opts.human,
		stdout:      stdout,
		logger:      newLogger(cfg, stderr),
		archiveOpts: []vfs.Option{
			vfs.WithAtomicCommit(cfg.Store.AtomicCommit),
			vfs.WithPreallocate(cfg.Store.Preallocate),
		},
	}
	inv.archiveOpts = append(inv.archiveOpts, vfs.WithLogger(inv.logger))

	err = dispatch(inv, positional[1])
	code := exitCode(err)
	if err != nil {
		fmt.Fprintf(stderr, "vfs: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			printUsage(stderr, flagSet)
		}
	}
	return code
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: vfs [flags] ARCHIVE COMMAND [ARGS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-36s %s\n", strings.TrimSpace(c.name+" "+c.usage), c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
