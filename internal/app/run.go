package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/ctxlog"
	"github.com/vk/distgridgo/internal/distdir"
	"github.com/vk/distgridgo/internal/fsdigest"
	"github.com/vk/distgridgo/internal/packager"
)

// Run executes the packaging operation based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	dist, err := distdir.New(appConfig.DistDir)
	if err != nil {
		return err
	}

	sourceRoot, err := gridRoot(appConfig.GridPath)
	if err != nil {
		return err
	}

	roots, err := parseTargetAddrs(appConfig.Targets)
	if err != nil {
		return err
	}

	orch, err := packager.New(
		a.registry,
		a.model,
		a.converter,
		fsdigest.NewWorkspace("."),
		dist,
		sourceRoot,
		appConfig.WorkerCount,
	)
	if err != nil {
		return fmt.Errorf("failed to set up packaging orchestrator: %w", err)
	}

	a.logger.Info("Starting packaging run.",
		"targets", len(a.model.Targets), "requested", len(roots), "dist_dir", dist.Path)
	if err := orch.Package(ctx, roots); err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}
	a.logger.Info("Packaging run finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}

// gridRoot resolves the directory source paths are read from: the grid path
// itself when it is a directory, otherwise the manifest file's directory.
func gridRoot(gridPath string) (string, error) {
	info, err := os.Stat(gridPath)
	if err != nil {
		return "", fmt.Errorf("error accessing grid path %s: %w", gridPath, err)
	}
	if info.IsDir() {
		return gridPath, nil
	}
	return filepath.Dir(gridPath), nil
}

// parseTargetAddrs parses the requested target addresses. A bare "name" is
// shorthand for a grid-root target.
func parseTargetAddrs(raw []string) ([]address.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	addrs := make([]address.Address, 0, len(raw))
	for _, entry := range raw {
		addr, err := address.ResolveIn(entry, "")
		if err != nil {
			return nil, fmt.Errorf("invalid target address %q: %w", entry, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
