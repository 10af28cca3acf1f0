package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	env "github.com/caarlos0/env/v11"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

const envPrefix = "UNSCRUPULOUS_"

// Config holds the settings shared by every subcommand. Environment
// variables set the defaults and flags override them.
type Config struct {
	Dir        string `env:"DIR"`
	Format     string `env:"FORMAT"     envDefault:"text"`
	Arch       string `env:"ARCH"`
	LogLevel   string `env:"LOG_LEVEL"  envDefault:"warn"`
	NoColor    bool   `env:"NO_COLOR"`
	MemProfile string `env:"MEMPROFILE"`
}

// LoadConfig reads UNSCRUPULOUS_* variables from the process environment.
func LoadConfig() (*Config, error) {
	return loadConfig(nil)
}

// loadConfig reads the configuration from environ, or from the process
// environment when environ is nil.
func loadConfig(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Arch == "" {
		cfg.Arch = runtime.GOARCH
	}
	return &cfg, nil
}

func (c *Config) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Dir, "dir", "C", c.Dir, "run as if started in `dir`")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "disable colored output")
	fs.StringVar(&c.MemProfile, "memprofile", c.MemProfile, "write a heap profile to `file` on exit")
}

func (c *Config) addFormatFlag(fs *pflag.FlagSet) {
	fs.StringVar(&c.Format, "format", c.Format, "output format: text, yaml, json, cbor or diag")
}

func (c *Config) apply() {
	if c.NoColor {
		color.NoColor = true
	}
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("config: log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
