package nfpm

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/content"
	"github.com/vk/distgridgo/internal/ctxlog"
	"github.com/vk/distgridgo/internal/environments"
	"github.com/vk/distgridgo/internal/fsdigest"
	"github.com/vk/distgridgo/internal/registry"
)

// Capability packages targets for one nFPM packager format.
type Capability struct {
	packager string
}

// packageFields is the field set an nFPM package target declares. Arch and
// platform default from the resolved build environment when absent.
type packageFields struct {
	PackageName string `dgo:"package_name"`
	Version     string `dgo:"version,optional"`
	Arch        string `dgo:"arch,optional"`
	Platform    string `dgo:"platform,optional"`
	Maintainer  string `dgo:"maintainer,optional"`
	Description string `dgo:"description,optional"`
}

// Name implements registry.Capability.
func (c *Capability) Name() string {
	return "nfpm_" + c.packager
}

// IsApplicable claims targets declared with this packager's block type.
func (c *Capability) IsApplicable(t *config.Target) bool {
	return t.Type == c.packager+"_package"
}

// ValidateTarget decodes the field set at startup so authoring errors
// surface before any build is dispatched.
func (c *Capability) ValidateTarget(ctx context.Context, t *config.Target, conv config.Converter) error {
	var fields packageFields
	return conv.DecodeFields(ctx, &fields, t.Fields)
}

// Build renders the nfpm.yaml for one package target and stages the file
// contents of its dependency closure next to it. The artifact is the whole
// output directory.
func (c *Capability) Build(ctx context.Context, req registry.BuildRequest) (*registry.BuiltPackage, error) {
	logger := ctxlog.FromContext(ctx)
	target := req.FieldSet.Target

	var fields packageFields
	if err := req.Converter.DecodeFields(ctx, &fields, target.Fields); err != nil {
		return nil, err
	}
	if fields.Version == "" {
		fields.Version = "0.0.0"
	}
	if env, ok := environments.FromContext(ctx); ok {
		if fields.Arch == "" {
			fields.Arch = environments.Arch(env)
		}
		if fields.Platform == "" {
			fields.Platform = environments.OS(env)
		}
	}

	entries := content.Collect(req.Closure)
	logger.Debug("Aggregated package contents.",
		"target", target.Address.String(), "entry_count", len(entries))

	doc, err := renderConfig(fields, entries)
	if err != nil {
		return nil, fmt.Errorf("rendering nfpm config for %q: %w", target.Address.String(), err)
	}

	outDir := registry.OutputPath(target, c.packager)
	files := []fsdigest.File{{
		Path:    path.Join(outDir, "nfpm.yaml"),
		Content: doc,
	}}

	for _, entry := range entries {
		if entry.Kind != content.KindFile {
			continue
		}
		data, err := os.ReadFile(filepath.Join(req.SourceRoot, filepath.FromSlash(entry.Src)))
		if err != nil {
			return nil, fmt.Errorf("reading content source %q: %w", entry.Src, err)
		}
		mode := entry.Mode
		if mode == 0 {
			mode = defaultFileMode
		}
		files = append(files, fsdigest.File{
			Path:    path.Join(outDir, "contents", entry.Dst),
			Content: data,
			Mode:    mode,
		})
	}

	digest, err := fsdigest.FromFiles(files)
	if err != nil {
		return nil, err
	}

	return &registry.BuiltPackage{
		Digest: digest,
		Artifacts: []registry.BuiltPackageArtifact{{
			Relpath: outDir,
			ExtraLogLines: []string{
				fmt.Sprintf("%s package %s %s (%d content entries)",
					c.packager, fields.PackageName, fields.Version, len(entries)),
			},
		}},
	}, nil
}
