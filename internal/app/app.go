// Package app wires the orchestrator together: configuration loading,
// logging, the matrix expansion and planning stages, the executor, and the
// status surface.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avask/buildgrid/internal/config"
	"github.com/avask/buildgrid/internal/ctxlog"
	"github.com/avask/buildgrid/internal/toolchain"
)

// Config holds everything an App instance needs to run.
type Config struct {
	PipelinePath string
	ProjectDir   string
	ArtifactDir  string
	ReportPath   string

	// Event and Branch describe the hosting event that started this run,
	// matched against the pipeline's trigger block.
	Event  string
	Branch string

	LogFormat  string
	LogLevel   string
	Workers    int
	StatusPort int

	// PlanOnly stops after planning and prints the resolved descriptors.
	PlanOnly bool
}

// NewConfig validates a Config value.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, fmt.Errorf("a pipeline definition path is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	return &cfg, nil
}

// App encapsulates the orchestrator's dependencies and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	cfg       *Config
	loader    config.Loader
	toolchain toolchain.Toolchain
	runID     string
}

// NewApp constructs the application with an isolated logger. A nil
// toolchain selects the cargo/rustup implementation; tests inject fakes.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, tc toolchain.Toolchain) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	return &App{
		outW:      outW,
		logger:    logger,
		cfg:       cfg,
		loader:    loader,
		toolchain: tc,
		runID:     uuid.NewString(),
	}
}

// RunID returns the unique identifier of this app instance's run.
func (a *App) RunID() string { return a.runID }

// context returns a context carrying the app's logger.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger.With("runID", a.runID))
}
