package packager

import (
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/ctxlog"
	"github.com/vk/distgridgo/internal/distdir"
	"github.com/vk/distgridgo/internal/environments"
	"github.com/vk/distgridgo/internal/fsdigest"
	"github.com/vk/distgridgo/internal/graph"
	"github.com/vk/distgridgo/internal/registry"
)

// Orchestrator drives one packaging invocation over a loaded model.
type Orchestrator struct {
	registry   *registry.Registry
	model      *config.Model
	index      *config.Index
	converter  config.Converter
	envs       *environments.Resolver
	workspace  *fsdigest.Workspace
	dist       distdir.DistDir
	sourceRoot string
	workers    int
}

// New builds an Orchestrator over the given model. The workspace is where
// the dist directory lives (the process working directory in production;
// a temp directory in tests).
func New(
	reg *registry.Registry,
	model *config.Model,
	conv config.Converter,
	workspace *fsdigest.Workspace,
	dist distdir.DistDir,
	sourceRoot string,
	workers int,
) (*Orchestrator, error) {
	index, err := config.NewIndex(model.Targets)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		registry:   reg,
		model:      model,
		index:      index,
		converter:  conv,
		envs:       environments.NewResolver(model),
		workspace:  workspace,
		dist:       dist,
		sourceRoot: sourceRoot,
		workers:    workers,
	}, nil
}

// preparedBuild is one fully resolved unit of work: a field set with its
// environment and dependency closure, ready for concurrent dispatch.
type preparedBuild struct {
	fieldSet registry.FieldSet
	env      *config.Environment
	closure  *graph.Closure
}

// Package runs the whole packaging operation for the requested roots. An
// empty roots list means every packageable target in the grid. Zero
// resulting field sets is a warning and a successful no-op; any build
// failure or output conflict fails the invocation with nothing written.
func (o *Orchestrator) Package(ctx context.Context, rootAddrs []address.Address) error {
	logger := ctxlog.FromContext(ctx)

	roots, err := o.resolveRoots(rootAddrs)
	if err != nil {
		return err
	}

	fieldSets := o.registry.TargetRootsToFieldSets(roots)
	if len(fieldSets) == 0 {
		logger.Warn("No applicable package targets found; nothing to do.")
		return nil
	}
	logger.Debug("Resolved package field sets.", "count", len(fieldSets))

	prepared, err := o.prepare(ctx, fieldSets)
	if err != nil {
		return err
	}

	packages, err := o.dispatch(ctx, prepared)
	if err != nil {
		return err
	}

	return o.write(ctx, packages)
}

// resolveRoots maps the requested addresses to targets. With no explicit
// request, every packageable target in declaration order becomes a root.
func (o *Orchestrator) resolveRoots(rootAddrs []address.Address) ([]*config.Target, error) {
	if len(rootAddrs) == 0 {
		return o.registry.AllPackageableTargets(o.index.Targets()), nil
	}
	roots := make([]*config.Target, 0, len(rootAddrs))
	for _, addr := range rootAddrs {
		t, ok := o.index.Lookup(addr)
		if !ok {
			return nil, fmt.Errorf("requested target %q does not exist", addr.String())
		}
		roots = append(roots, t)
	}
	return roots, nil
}

// prepare resolves each field set's environment and dependency closure.
// These are the resolution steps whose failures must surface before any
// build is attempted.
func (o *Orchestrator) prepare(ctx context.Context, fieldSets []registry.FieldSet) ([]preparedBuild, error) {
	logger := ctxlog.FromContext(ctx)
	prepared := make([]preparedBuild, 0, len(fieldSets))

	for _, fs := range fieldSets {
		env, err := o.envs.Resolve(fs.Target)
		if err != nil {
			return nil, err
		}

		rootAddr := []address.Address{fs.Address()}
		pred := TraverseIfNotPackageTarget(o.registry, rootAddr, true)
		closure, err := graph.TransitiveTargets(o.index, rootAddr, pred)
		if err != nil {
			return nil, fmt.Errorf("resolving dependencies of %q: %w", fs.Address().String(), err)
		}

		logger.Debug("Prepared package build.",
			"target", fs.Address().String(),
			"capability", fs.Capability.Name(),
			"environment", env.Name,
			"dependency_count", len(closure.Dependencies))
		prepared = append(prepared, preparedBuild{fieldSet: fs, env: env, closure: closure})
	}
	return prepared, nil
}

// dispatch builds every prepared field set concurrently. Builds are
// independent; the first failure cancels the group and fails the whole
// invocation.
func (o *Orchestrator) dispatch(ctx context.Context, prepared []preparedBuild) ([]*registry.BuiltPackage, error) {
	logger := ctxlog.FromContext(ctx)
	packages := make([]*registry.BuiltPackage, len(prepared))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, p := range prepared {
		g.Go(func() error {
			buildCtx := environments.WithEnvironment(gctx, p.env)
			logger.Debug("Dispatching package build.",
				"target", p.fieldSet.Address().String(),
				"capability", p.fieldSet.Capability.Name())

			pkg, err := p.fieldSet.Capability.Build(buildCtx, registry.BuildRequest{
				FieldSet:   p.fieldSet,
				Closure:    p.closure,
				SourceRoot: o.sourceRoot,
				Converter:  o.converter,
			})
			if err != nil {
				return fmt.Errorf("failed to build %q with capability %s: %w",
					p.fieldSet.Address().String(), p.fieldSet.Capability.Name(), err)
			}
			packages[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return packages, nil
}

// write merges every built package and writes the result under the dist
// directory, clearing exactly the artifact paths this invocation owns. One
// info line is logged per artifact.
func (o *Orchestrator) write(ctx context.Context, packages []*registry.BuiltPackage) error {
	logger := ctxlog.FromContext(ctx)

	digests := make([]*fsdigest.Digest, 0, len(packages))
	var relpaths []string
	for _, pkg := range packages {
		digests = append(digests, pkg.Digest)
		for _, artifact := range pkg.Artifacts {
			if artifact.Relpath != "" {
				relpaths = append(relpaths, artifact.Relpath)
			}
		}
	}

	merged, err := fsdigest.Merge(digests...)
	if err != nil {
		return fmt.Errorf("cannot merge built packages: %w", err)
	}

	if err := o.workspace.WriteDigest(ctx, merged, o.dist.Path, relpaths); err != nil {
		return err
	}

	for _, pkg := range packages {
		for _, artifact := range pkg.Artifacts {
			var msg []string
			if artifact.Relpath != "" {
				msg = append(msg, fmt.Sprintf("Wrote %s", path.Join(o.dist.Path, artifact.Relpath)))
			}
			msg = append(msg, artifact.ExtraLogLines...)
			if len(msg) > 0 {
				logger.Info(strings.Join(msg, "\n"))
			}
		}
	}
	return nil
}
