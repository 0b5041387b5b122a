package hcl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/ctxlog"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeManifest(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoader_Load_SingleManifest(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	gridFile := writeManifest(t, root, "grid.hcl", `
target "deb_package" "myapp" {
  package_name = "myapp"
  version      = "1.0.0"
  depends_on   = ["bin"]
  refs         = ["docs:readme"]
}

target "content_file" "bin" {
  src = "build/app"
  dst = "usr/bin/app"
}
`)

	model, conv, err := NewLoader().Load(ctx, gridFile)
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, model.Targets, 2)

	pkg := model.Targets[0]
	assert.Equal(t, ":myapp", pkg.Address.String())
	assert.Equal(t, "deb_package", pkg.Type)

	name, ok := pkg.StringField("package_name")
	require.True(t, ok)
	assert.Equal(t, "myapp", name)

	require.Len(t, pkg.DependsOn, 1)
	assert.Equal(t, ":bin", pkg.DependsOn[0].String())
	require.Len(t, pkg.Refs, 1)
	assert.Equal(t, "docs:readme", pkg.Refs[0].String())
}

func TestLoader_Load_DirectoryWithNestedManifests(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	writeManifest(t, root, "grid.hcl", `
target "deb_package" "app" {
  package_name = "app"
  depends_on   = ["docs/tools:manpages"]
}
`)
	writeManifest(t, filepath.Join(root, "docs", "tools"), "grid.hcl", `
target "content_file" "manpages" {
  src = "docs/tools/app.1"
  dst = "usr/share/man/man1/app.1"
}
`)

	model, _, err := NewLoader().Load(ctx, root)
	require.NoError(t, err)
	require.Len(t, model.Targets, 2)

	idx, err := config.NewIndex(model.Targets)
	require.NoError(t, err)

	// The nested manifest's spec path comes from its directory.
	nested, ok := idx.Lookup(address.New("docs/tools", "manpages"))
	require.True(t, ok)
	assert.Equal(t, "content_file", nested.Type)
}

func TestLoader_Load_Environments(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()

	t.Run("implicit local environment", func(t *testing.T) {
		gridFile := writeManifest(t, filepath.Join(root, "implicit"), "grid.hcl", `
target "archive" "bundle" {}
`)
		model, _, err := NewLoader().Load(ctx, gridFile)
		require.NoError(t, err)

		local, ok := model.Environments[LocalEnvironmentName]
		require.True(t, ok)
		assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, local.Platform)
	})

	t.Run("declared environments", func(t *testing.T) {
		gridFile := writeManifest(t, filepath.Join(root, "declared"), "grid.hcl", `
environment "prod" {
  platform = "linux/arm64"
}

target "archive" "bundle" {
  environment = "prod"
}
`)
		model, _, err := NewLoader().Load(ctx, gridFile)
		require.NoError(t, err)

		prod, ok := model.Environments["prod"]
		require.True(t, ok)
		assert.Equal(t, "linux/arm64", prod.Platform)
		// The implicit local environment is still present.
		assert.Contains(t, model.Environments, LocalEnvironmentName)
	})

	t.Run("overridden local environment is kept", func(t *testing.T) {
		gridFile := writeManifest(t, filepath.Join(root, "override"), "grid.hcl", `
environment "local" {
  platform = "linux/riscv64"
}
`)
		model, _, err := NewLoader().Load(ctx, gridFile)
		require.NoError(t, err)
		assert.Equal(t, "linux/riscv64", model.Environments[LocalEnvironmentName].Platform)
	})

	t.Run("duplicate environment is rejected", func(t *testing.T) {
		gridFile := writeManifest(t, filepath.Join(root, "dup"), "grid.hcl", `
environment "prod" {
  platform = "linux/amd64"
}

environment "prod" {
  platform = "linux/arm64"
}
`)
		_, _, err := NewLoader().Load(ctx, gridFile)
		assert.ErrorContains(t, err, "declared more than once")
	})
}

func TestLoader_Load_Errors(t *testing.T) {
	ctx := testContext(t)

	t.Run("missing grid path", func(t *testing.T) {
		_, _, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nope"))
		assert.ErrorContains(t, err, "error accessing grid path")
	})

	t.Run("unparseable manifest", func(t *testing.T) {
		gridFile := writeManifest(t, t.TempDir(), "grid.hcl", `target "deb_package" {`)
		_, _, err := NewLoader().Load(ctx, gridFile)
		assert.Error(t, err)
	})

	t.Run("non-literal field value", func(t *testing.T) {
		gridFile := writeManifest(t, t.TempDir(), "grid.hcl", `
target "deb_package" "x" {
  package_name = var.name
}
`)
		_, _, err := NewLoader().Load(ctx, gridFile)
		assert.Error(t, err)
	})

	t.Run("malformed dependency entry", func(t *testing.T) {
		gridFile := writeManifest(t, t.TempDir(), "grid.hcl", `
target "deb_package" "x" {
  package_name = "x"
  depends_on   = ["a:b:c"]
}
`)
		_, _, err := NewLoader().Load(ctx, gridFile)
		assert.ErrorContains(t, err, "depends_on")
	})
}
