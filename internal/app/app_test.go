package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/distgridgo/internal/hcl"
)

// writeGrid stages a grid directory with a manifest and source files.
func writeGrid(t *testing.T, manifest string, sources map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "grid.hcl"), []byte(manifest), 0o644))
	for rel, body := range sources {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(body), 0o644))
	}
	return root
}

func runApp(t *testing.T, cfg Config) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	a := NewApp(&out, appConfig, hcl.NewLoader())
	runErr := a.Run(context.Background(), appConfig)
	return out.String(), runErr
}

func TestApp_PackagesAGrid(t *testing.T) {
	gridDir := writeGrid(t, `
target "deb_package" "myapp" {
  package_name = "myapp"
  version      = "1.2.3"
  maintainer   = "Ops <ops@example.com>"
  depends_on   = ["bin", "readme"]
}

target "content_file" "bin" {
  src       = "build/app"
  dst       = "usr/bin/app"
  file_mode = "0755"
}

target "content_file" "readme" {
  src = "docs/README"
  dst = "usr/share/doc/myapp/README"
}
`, map[string]string{
		"build/app":   "#!/bin/sh\necho hi\n",
		"docs/README": "read me\n",
	})

	logs, err := runApp(t, Config{
		GridPath:    gridDir,
		DistDir:     "dist",
		LogFormat:   "text",
		LogLevel:    "info",
		WorkerCount: 2,
	})
	require.NoError(t, err)

	doc, err := os.ReadFile(filepath.Join("dist", "myapp.deb", "nfpm.yaml"))
	require.NoError(t, err)
	text := string(doc)

	assert.True(t, strings.HasPrefix(text, "# Generated by distgridgo\n"))
	assert.Contains(t, text, "name: myapp")
	assert.Contains(t, text, "version: 1.2.3")
	assert.Contains(t, text, "dst: usr/bin/app")
	assert.Contains(t, text, "mode: 0755")
	assert.Contains(t, text, "dst: usr/share/doc/myapp/README")
	// The README declares no mode, so the file default applies, exactly once.
	assert.Equal(t, 1, strings.Count(text, "mode: 0644"))

	staged, err := os.ReadFile(filepath.Join("dist", "myapp.deb", "contents", "usr", "bin", "app"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(staged))

	assert.Contains(t, logs, "Wrote dist/myapp.deb")
	assert.Contains(t, logs, "deb package myapp 1.2.3")
}

func TestApp_RequestedTargetsOnly(t *testing.T) {
	gridDir := writeGrid(t, `
target "archive" "bundle" {
  depends_on = ["bin"]
}

target "archive" "other" {
  depends_on = ["bin"]
}

target "content_file" "bin" {
  src = "build/app"
  dst = "usr/bin/app"
}
`, map[string]string{"build/app": "bin\n"})

	_, err := runApp(t, Config{
		GridPath:    gridDir,
		DistDir:     "dist",
		Targets:     []string{"bundle"},
		LogFormat:   "text",
		LogLevel:    "info",
		WorkerCount: 2,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join("dist", "bundle.tar.gz"))
	assert.NoFileExists(t, filepath.Join("dist", "other.tar.gz"))
}

func TestApp_NoPackageableTargetsIsACleanNoOp(t *testing.T) {
	gridDir := writeGrid(t, `
target "content_file" "bin" {
  src = "build/app"
  dst = "usr/bin/app"
}
`, map[string]string{"build/app": "bin\n"})

	logs, err := runApp(t, Config{
		GridPath:    gridDir,
		DistDir:     "dist",
		LogFormat:   "text",
		LogLevel:    "info",
		WorkerCount: 2,
	})
	require.NoError(t, err)

	assert.Contains(t, logs, "No applicable package targets found")
	assert.NoDirExists(t, "dist")
}

func TestApp_InvalidManifestPanicsAtStartup(t *testing.T) {
	gridDir := writeGrid(t, `
target "deb_package" "broken" {
  version = "1.0.0"
}
`, nil)

	var out bytes.Buffer
	appConfig, err := NewConfig(Config{
		GridPath: gridDir, DistDir: "dist", LogFormat: "text", LogLevel: "info",
	})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(&out, appConfig, hcl.NewLoader())
	})
}

func TestNewConfig_Validation(t *testing.T) {
	_, err := NewConfig(Config{DistDir: "dist"})
	assert.ErrorContains(t, err, "GridPath")

	_, err = NewConfig(Config{GridPath: "grid.hcl"})
	assert.ErrorContains(t, err, "DistDir")
}
