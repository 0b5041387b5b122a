package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/ctxlog"
	"github.com/vk/distgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the whole grid into the format-agnostic model first.
	model, converter, err := loader.Load(ctx, appConfig.GridPath)
	if err != nil {
		// A failure to load the grid is a fatal startup error.
		panic(fmt.Errorf("failed to load grid: %w", err))
	}
	logger.Debug("Grid loaded and translated into unified model.")

	// Create and populate the registry with packaging capabilities.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All capability modules registered.", "count", len(modules))

	// Validate every claimed target's field set against its capability.
	if err := reg.Validate(ctx, model, converter); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		model:     model,
		converter: converter,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded grid model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
