package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mattn/go-isatty"
)

// Config holds the generator settings read from the environment.
type Config struct {
	// LogLevel filters generator logs (debug, info, warn, error).
	LogLevel slog.Level `env:"CAPGEN_LOG_LEVEL" envDefault:"info"`

	// LogFormat is text, json or auto. auto writes text to terminals and
	// JSON elsewhere.
	LogFormat string `env:"CAPGEN_LOG_FORMAT" envDefault:"text"`

	// CapabilityImport is used when a spec has no capabilityImport.
	CapabilityImport string `env:"CAPGEN_CAPABILITY_IMPORT"`
}

// loadConfig parses environ, or the process environment when environ is nil.
func loadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "", "text":
		cfg.LogFormat = "text"
	case "json", "auto":
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	default:
		return Config{}, fmt.Errorf("parse env: CAPGEN_LOG_FORMAT must be text, json or auto, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// newLogger builds the generator logger writing to w.
func (c Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" || (c.LogFormat == "auto" && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
