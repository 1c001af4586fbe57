package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ModeServe = "serve"
	ModeRun   = "run"
)

// Config holds process configuration. Environment variables give the
// defaults; flags override them.
type Config struct {
	Socket    string        `env:"VIMY_SOCKET"        envDefault:"/tmp/vimy-triggers.sock"`
	Scenario  string        `env:"VIMY_SCENARIO"`
	Scenarios string        `env:"VIMY_SCENARIO_DIR"  envDefault:"scenarios"`
	Mode      string        `env:"VIMY_MODE"          envDefault:"serve"`
	MaxTicks  int           `env:"VIMY_MAX_TICKS"     envDefault:"0"`
	Interval  time.Duration `env:"VIMY_TICK_INTERVAL" envDefault:"0s"`
	LogLevel  slog.Level    `env:"VIMY_LOG_LEVEL"     envDefault:"info"`
	LogFormat string        `env:"VIMY_LOG_FORMAT"    envDefault:"text"`
}

// Parse reads the environment, then flags from args.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Socket, "socket", cfg.Socket, "unix socket to listen on in serve mode")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario yaml file")
	fs.StringVar(&cfg.Scenarios, "scenario-dir", cfg.Scenarios, "directory hello messages name scenarios in")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "serve (sidecar) or run (standalone simulation)")
	fs.IntVar(&cfg.MaxTicks, "max-ticks", cfg.MaxTicks, "stop a run after this many ticks (0 = until the game ends)")
	fs.DurationVar(&cfg.Interval, "tick-interval", cfg.Interval, "wall-clock time between ticks in run mode")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeServe:
		if c.Socket == "" {
			return errors.New("socket path is required in serve mode")
		}
		if c.Scenarios == "" {
			return errors.New("scenario directory is required in serve mode")
		}
	case ModeRun:
		if c.Scenario == "" {
			return errors.New("scenario path is required in run mode")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("max ticks must not be negative, got %d", c.MaxTicks)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
