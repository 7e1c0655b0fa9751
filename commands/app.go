// Package commands provides the insight CLI subcommands.
package commands

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/c360studio/insight/config"
	"github.com/c360studio/insight/llm"
)

// App holds the shared dependencies behind every subcommand. Setup is lazy
// so commands that need nothing (version) work even with a broken config.
type App struct {
	// ConfigPath optionally points at an explicit config file,
	// bypassing the layered lookup.
	ConfigPath string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	setupOnce sync.Once
	setupErr  error

	cfg    *config.Config
	client *llm.Client
	calls  *llm.CallStore
	logger *slog.Logger
}

// Setup loads configuration and builds the LLM client, once.
func (a *App) Setup() error {
	a.setupOnce.Do(a.doSetup)
	return a.setupErr
}

func (a *App) doSetup() {
	// Bootstrap logger so config loading itself is observable.
	a.logger = newLogger(a.LogLevel)
	slog.SetDefault(a.logger)

	var cfg *config.Config
	var err error
	if a.ConfigPath != "" {
		cfg, err = config.LoadFromFile(a.ConfigPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(a.logger).Load()
	}
	if err != nil {
		a.setupErr = err
		return
	}
	a.cfg = cfg

	// Flag wins over config for log level.
	if a.LogLevel == "" && cfg.Log.Level != "" {
		a.logger = newLogger(cfg.Log.Level)
		slog.SetDefault(a.logger)
	}

	if !cfg.Trajectory.Disabled {
		calls, err := llm.OpenCallStore(cfg.Trajectory.Path, llm.WithStoreLogger(a.logger))
		if err != nil {
			// Call recording is optional; a broken store never blocks a command.
			a.logger.Warn("Call store unavailable, recording disabled",
				"path", cfg.Trajectory.Path,
				"error", err)
		} else {
			a.calls = calls
		}
	}

	clientOpts := []llm.ClientOption{llm.WithLogger(a.logger)}
	if a.calls != nil {
		clientOpts = append(clientOpts, llm.WithCallStore(a.calls))
	}
	a.client = llm.NewClient(cfg.Registry(), clientOpts...)
}

// Close releases resources opened during Setup.
func (a *App) Close() {
	if a.calls != nil {
		if err := a.calls.Close(); err != nil {
			a.logger.Warn("Failed to close call store", "error", err)
		}
	}
}

// Config returns the loaded configuration. Only valid after Setup.
func (a *App) Config() *config.Config { return a.cfg }

// Client returns the LLM client. Only valid after Setup.
func (a *App) Client() *llm.Client { return a.client }

// Calls returns the call store, or nil when recording is disabled.
func (a *App) Calls() *llm.CallStore { return a.calls }

// Logger returns the configured logger. Only valid after Setup.
func (a *App) Logger() *slog.Logger { return a.logger }

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
