package fsdigest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/distgridgo/internal/ctxlog"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestFromFiles_SortsAndNormalizes(t *testing.T) {
	d, err := FromFiles([]File{
		{Path: "b/two.txt", Content: []byte("two")},
		{Path: "./a/one.txt", Content: []byte("one"), Mode: 0o755},
	})
	require.NoError(t, err)

	files := d.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a/one.txt", files[0].Path)
	assert.Equal(t, os.FileMode(0o755), files[0].Mode)
	assert.Equal(t, "b/two.txt", files[1].Path)
	assert.Equal(t, DefaultFileMode, files[1].Mode)
}

func TestFromFiles_DuplicatePaths(t *testing.T) {
	t.Run("identical content is deduplicated", func(t *testing.T) {
		d, err := FromFiles([]File{
			{Path: "a.txt", Content: []byte("same")},
			{Path: "a.txt", Content: []byte("same")},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, d.Len())
	})

	t.Run("different content is a conflict", func(t *testing.T) {
		_, err := FromFiles([]File{
			{Path: "a.txt", Content: []byte("one")},
			{Path: "a.txt", Content: []byte("two")},
		})
		assert.ErrorContains(t, err, "path conflict")
	})
}

func TestFromFiles_RejectsEscapingPaths(t *testing.T) {
	for _, p := range []string{"", "/etc/passwd", "../outside", "a/../../b", "."} {
		t.Run(p, func(t *testing.T) {
			_, err := FromFiles([]File{{Path: p, Content: []byte("x")}})
			assert.Error(t, err)
		})
	}
}

func TestDigest_HashIsOrderIndependent(t *testing.T) {
	a, err := FromFiles([]File{
		{Path: "x.txt", Content: []byte("x")},
		{Path: "y.txt", Content: []byte("y")},
	})
	require.NoError(t, err)

	b, err := FromFiles([]File{
		{Path: "y.txt", Content: []byte("y")},
		{Path: "x.txt", Content: []byte("x")},
	})
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), (&Digest{}).Hash())
}

func TestMerge(t *testing.T) {
	one, err := FromFiles([]File{{Path: "pkg-a/out.deb", Content: []byte("a")}})
	require.NoError(t, err)
	two, err := FromFiles([]File{{Path: "pkg-b/out.deb", Content: []byte("b")}})
	require.NoError(t, err)

	t.Run("disjoint digests merge", func(t *testing.T) {
		merged, err := Merge(one, two, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, merged.Len())
	})

	t.Run("same path same content merges", func(t *testing.T) {
		dup, err := FromFiles([]File{{Path: "pkg-a/out.deb", Content: []byte("a")}})
		require.NoError(t, err)
		merged, err := Merge(one, dup)
		require.NoError(t, err)
		assert.Equal(t, 1, merged.Len())
	})

	t.Run("same path different content is a conflict", func(t *testing.T) {
		clash, err := FromFiles([]File{{Path: "pkg-a/out.deb", Content: []byte("other")}})
		require.NoError(t, err)
		_, err = Merge(one, clash)
		assert.ErrorContains(t, err, "produced by more than one package")
	})
}

func TestWorkspace_WriteDigest(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	ws := NewWorkspace(root)

	d, err := FromFiles([]File{
		{Path: "myapp/nfpm.yaml", Content: []byte("name: myapp\n")},
		{Path: "myapp/contents/usr/bin/app", Content: []byte("#!/bin/sh\n"), Mode: 0o755},
	})
	require.NoError(t, err)

	require.NoError(t, ws.WriteDigest(ctx, d, "dist", nil))

	got, err := os.ReadFile(filepath.Join(root, "dist", "myapp", "nfpm.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "name: myapp\n", string(got))

	info, err := os.Stat(filepath.Join(root, "dist", "myapp", "contents", "usr", "bin", "app"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWorkspace_WriteDigest_ClearsDeclaredPathsOnly(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	ws := NewWorkspace(root)

	// A previous run left stale content under the artifact directory and an
	// unrelated file next to it.
	stale := filepath.Join(root, "dist", "myapp", "contents", "old.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))
	unrelated := filepath.Join(root, "dist", "keep.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))

	d, err := FromFiles([]File{{Path: "myapp/nfpm.yaml", Content: []byte("fresh")}})
	require.NoError(t, err)

	require.NoError(t, ws.WriteDigest(ctx, d, "dist", []string{"myapp"}))

	assert.NoFileExists(t, stale)
	assert.FileExists(t, unrelated)
	assert.FileExists(t, filepath.Join(root, "dist", "myapp", "nfpm.yaml"))
}

func TestWorkspace_WriteDigest_RejectsEscapingClearPath(t *testing.T) {
	ctx := testContext(t)
	ws := NewWorkspace(t.TempDir())

	err := ws.WriteDigest(ctx, &Digest{}, "dist", []string{"../outside"})
	assert.ErrorContains(t, err, "invalid clear path")
}
