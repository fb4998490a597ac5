// Package cli implements the streamview command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bnema/streamview/internal/cli/styles"
	"github.com/bnema/streamview/internal/config"
	"github.com/bnema/streamview/internal/logging"
)

// BuildInfo carries the ldflags-injected build identification.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App holds the shared state the commands run against: resolved
// configuration, logger and output theme.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     styles.Theme
	Logger    zerolog.Logger
	BuildInfo BuildInfo
}

// NewApp loads the configuration and wires the logger from it.
func NewApp() (*App, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	logCfg := logging.DefaultConfig()
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logCfg.Level = level
	}
	if cfg.Logging.Format != "" {
		logCfg.Format = cfg.Logging.Format
	}

	return &App{
		Config:  cfg,
		Manager: manager,
		Theme:   styles.NewTheme(),
		Logger:  logging.New(logCfg),
	}, nil
}

// Context returns a base context carrying the app logger.
func (a *App) Context() context.Context {
	return logging.WithContext(context.Background(), a.Logger)
}
