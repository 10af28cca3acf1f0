// Command unscrupulous inspects certified types and frames.
//
//	unscrupulous check  [-C dir] <packages...>
//	unscrupulous layout [-C dir] [--arch GOARCH] [--format f] <package> <Type...>
//	unscrupulous frame  [--format f] <file...>
//	unscrupulous version
//
// Settings default from UNSCRUPULOUS_* environment variables
// (UNSCRUPULOUS_FORMAT, UNSCRUPULOUS_ARCH, UNSCRUPULOUS_LOG_LEVEL, ...).
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

// Version is set at link time with -ldflags "-X main.Version=...".
var Version = "devel"

// exitError carries a process exit status without a message.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

type command struct {
	usage string
	flags func(cfg *Config, fs *pflag.FlagSet)
	run   func(cfg *Config, args []string, stdout io.Writer, log *slog.Logger) error
}

var commands = map[string]command{
	"check": {
		usage: "check [-C dir] <packages...>",
		run:   runCheck,
	},
	"layout": {
		usage: "layout [-C dir] [--arch GOARCH] [--format f] <package> <Type...>",
		flags: func(cfg *Config, fs *pflag.FlagSet) {
			cfg.addFormatFlag(fs)
			fs.StringVar(&cfg.Arch, "arch", cfg.Arch, "target `GOARCH` for sizes and offsets")
		},
		run: runLayout,
	},
	"frame": {
		usage: "frame [--format f] <file...>",
		flags: func(cfg *Config, fs *pflag.FlagSet) { cfg.addFormatFlag(fs) },
		run:   runFrame,
	},
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return exitError(2)
	}
	name, args := args[0], args[1:]
	switch name {
	case "version", "--version":
		_, err := fmt.Fprintf(stdout, "unscrupulous %s %s/%s\n", Version, runtime.GOOS, runtime.GOARCH)
		return err
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: unscrupulous %s\n", cmd.usage)
		fs.PrintDefaults()
	}
	cfg.addFlags(fs)
	if cmd.flags != nil {
		cmd.flags(cfg, fs)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitError(2)
	}
	cfg.apply()
	log, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}

	err = cmd.run(cfg, fs.Args(), stdout, log)
	if cfg.MemProfile != "" {
		if perr := writeHeapProfile(cfg.MemProfile); perr != nil {
			log.Error("heap profile", "path", cfg.MemProfile, "err", perr)
		}
	}
	return err
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	for _, name := range []string{"check", "layout", "frame"} {
		fmt.Fprintf(w, "  unscrupulous %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "  unscrupulous version")
}
