package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/ctxlog"
	"github.com/vk/distgridgo/internal/fsutil"
	"github.com/vk/distgridgo/internal/schema"
)

// LocalEnvironmentName is the implicit environment every grid carries. It
// is used whenever a package target does not select one explicitly.
const LocalEnvironmentName = "local"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL grid loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers and parses every .hcl manifest under gridPath and
// translates the contents into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, gridPath string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "grid_path", gridPath)

	info, err := os.Stat(gridPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error accessing grid path %s: %w", gridPath, err)
	}

	var files []string
	root := gridPath
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(gridPath, ".hcl")
		if err != nil {
			return nil, nil, fmt.Errorf("error walking grid path %s: %w", gridPath, err)
		}
	} else {
		files = []string{gridPath}
		root = filepath.Dir(gridPath)
	}
	logger.Debug("Discovered grid manifests.", "count", len(files))

	model := &config.Model{
		Environments: make(map[string]*config.Environment),
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		specPath, err := specPathFor(root, file)
		if err != nil {
			return nil, nil, err
		}

		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var gridFile schema.GridFile
		diags = gohcl.DecodeBody(hclFile.Body, nil, &gridFile)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}

		for _, env := range gridFile.Environments {
			if _, exists := model.Environments[env.Name]; exists {
				return nil, nil, fmt.Errorf("environment %q declared more than once", env.Name)
			}
			model.Environments[env.Name] = &config.Environment{
				Name:     env.Name,
				Platform: env.Platform,
			}
		}

		for _, tgt := range gridFile.Targets {
			translated, err := l.translateTarget(tgt, specPath)
			if err != nil {
				return nil, nil, fmt.Errorf("in manifest %s: %w", file, err)
			}
			model.Targets = append(model.Targets, translated)
		}
	}

	if _, declared := model.Environments[LocalEnvironmentName]; !declared {
		model.Environments[LocalEnvironmentName] = &config.Environment{
			Name:     LocalEnvironmentName,
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		}
	}

	logger.Debug("HCL loading complete.",
		"targets", len(model.Targets), "environments", len(model.Environments))
	return model, NewConverter(), nil
}

// translateTarget converts one HCL target block into the agnostic model,
// evaluating every field attribute to a concrete value and resolving
// dependency shorthand against the declaring manifest's spec path.
func (l *Loader) translateTarget(s *schema.Target, specPath string) (*config.Target, error) {
	addr := address.New(specPath, s.Name)

	fields, err := evaluateBodyAttributes(s.Fields)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", addr.String(), err)
	}

	dependsOn, err := resolveEntries(s.DependsOn, specPath)
	if err != nil {
		return nil, fmt.Errorf("target %q depends_on: %w", addr.String(), err)
	}
	refs, err := resolveEntries(s.Refs, specPath)
	if err != nil {
		return nil, fmt.Errorf("target %q refs: %w", addr.String(), err)
	}

	return &config.Target{
		Address:   addr,
		Type:      s.Type,
		Fields:    fields,
		DependsOn: dependsOn,
		Refs:      refs,
	}, nil
}

// resolveEntries resolves a manifest's dependency entries to full addresses.
func resolveEntries(entries []string, specPath string) ([]address.Address, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	addrs := make([]address.Address, 0, len(entries))
	for _, entry := range entries {
		addr, err := address.ResolveIn(entry, specPath)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// specPathFor computes a manifest's spec path relative to the grid root.
func specPathFor(root, file string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil {
		return "", fmt.Errorf("manifest %s is not under grid root %s: %w", file, root, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// evaluateBodyAttributes extracts all attributes from a body and evaluates
// them with a nil context. Target fields must be literal values; anything
// requiring variables or functions is rejected here with the HCL
// diagnostics intact.
func evaluateBodyAttributes(body hcl.Body) (map[string]cty.Value, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	fields := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("field %q: %w", name, diags)
		}
		fields[name] = val
	}
	return fields, nil
}
