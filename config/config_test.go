package config

import (
	"flag"
	"log/slog"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	fs := flag.NewFlagSet("vimy", flag.ContinueOnError)

	cfg, err := Parse(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Mode != ModeServe {
		t.Fatalf("expected serve mode, got %q", cfg.Mode)
	}
	if cfg.Socket != "/tmp/vimy-triggers.sock" {
		t.Fatalf("expected default socket, got %q", cfg.Socket)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
}

func TestParseEnvAndFlags(t *testing.T) {
	t.Setenv("VIMY_MODE", "run")
	t.Setenv("VIMY_SCENARIO", "from-env.yaml")
	t.Setenv("VIMY_LOG_LEVEL", "debug")
	t.Setenv("VIMY_MAX_TICKS", "50")
	fs := flag.NewFlagSet("vimy", flag.ContinueOnError)

	cfg, err := Parse(fs, []string{"-scenario", "from-flag.yaml", "-log-format", "json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Mode != ModeRun || cfg.MaxTicks != 50 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Scenario != "from-flag.yaml" {
		t.Fatalf("flag should override env, got %q", cfg.Scenario)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Fatalf("logging = %v/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"serve", Config{Mode: ModeServe, Socket: "/tmp/s", Scenarios: "scenarios", LogFormat: "text"}, true},
		{"run", Config{Mode: ModeRun, Scenario: "a.yaml", LogFormat: "json"}, true},
		{"run without scenario", Config{Mode: ModeRun, LogFormat: "text"}, false},
		{"serve without socket", Config{Mode: ModeServe, Scenarios: "scenarios", LogFormat: "text"}, false},
		{"serve without scenario dir", Config{Mode: ModeServe, Socket: "/tmp/s", LogFormat: "text"}, false},
		{"unknown mode", Config{Mode: "replay", LogFormat: "text"}, false},
		{"negative ticks", Config{Mode: ModeRun, Scenario: "a.yaml", MaxTicks: -1, LogFormat: "text"}, false},
		{"unknown format", Config{Mode: ModeServe, Socket: "/tmp/s", Scenarios: "scenarios", LogFormat: "xml"}, false},
	}
	for _, tc := range tests {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
