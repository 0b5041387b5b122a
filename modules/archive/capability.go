package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/content"
	"github.com/vk/distgridgo/internal/ctxlog"
	"github.com/vk/distgridgo/internal/fsdigest"
	"github.com/vk/distgridgo/internal/registry"
)

// TargetType is the target block type this capability claims.
const TargetType = "archive"

// Supported archive formats.
const (
	FormatTarGz = "tar.gz"
	FormatZip   = "zip"
)

// epoch is the fixed timestamp stamped on every archive entry, keeping the
// output byte-identical across runs.
var epoch = time.Unix(0, 0).UTC()

// Capability packages targets into archive files.
type Capability struct{}

// archiveFields is the field set an archive target declares.
type archiveFields struct {
	Format string `dgo:"format,optional"`
}

// Name implements registry.Capability.
func (c *Capability) Name() string {
	return "archive"
}

// IsApplicable claims targets declared with the archive block type.
func (c *Capability) IsApplicable(t *config.Target) bool {
	return t.Type == TargetType
}

// ValidateTarget checks the field set and the format value at startup.
func (c *Capability) ValidateTarget(ctx context.Context, t *config.Target, conv config.Converter) error {
	var fields archiveFields
	if err := conv.DecodeFields(ctx, &fields, t.Fields); err != nil {
		return err
	}
	switch fields.Format {
	case "", FormatTarGz, FormatZip:
		return nil
	default:
		return fmt.Errorf("unsupported archive format %q", fields.Format)
	}
}

// Build archives the file contents of the target's dependency closure.
func (c *Capability) Build(ctx context.Context, req registry.BuildRequest) (*registry.BuiltPackage, error) {
	logger := ctxlog.FromContext(ctx)
	target := req.FieldSet.Target

	var fields archiveFields
	if err := req.Converter.DecodeFields(ctx, &fields, target.Fields); err != nil {
		return nil, err
	}
	if fields.Format == "" {
		fields.Format = FormatTarGz
	}

	entries := content.Collect(req.Closure)
	logger.Debug("Aggregated archive contents.",
		"target", target.Address.String(), "entry_count", len(entries))

	var blob []byte
	var err error
	switch fields.Format {
	case FormatTarGz:
		blob, err = buildTarGz(entries, req.SourceRoot)
	case FormatZip:
		blob, err = buildZip(entries, req.SourceRoot)
	default:
		err = fmt.Errorf("unsupported archive format %q", fields.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("archiving %q: %w", target.Address.String(), err)
	}

	outPath := registry.OutputPath(target, fields.Format)
	digest, err := fsdigest.FromFiles([]fsdigest.File{{Path: outPath, Content: blob}})
	if err != nil {
		return nil, err
	}

	return &registry.BuiltPackage{
		Digest: digest,
		Artifacts: []registry.BuiltPackageArtifact{{
			Relpath: outPath,
			ExtraLogLines: []string{
				fmt.Sprintf("%s archive (%d content entries)", fields.Format, len(entries)),
			},
		}},
	}, nil
}

// readSource loads one file-kind entry's bytes from the grid root.
func readSource(root string, entry content.Entry) ([]byte, fs.FileMode, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(entry.Src)))
	if err != nil {
		return nil, 0, fmt.Errorf("reading content source %q: %w", entry.Src, err)
	}
	mode := entry.Mode
	if mode == 0 {
		mode = 0o644
	}
	return data, mode, nil
}

func buildTarGz(entries []content.Entry, sourceRoot string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, entry := range entries {
		switch entry.Kind {
		case content.KindDir:
			if err := tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeDir,
				Name:     entry.Dst + "/",
				Mode:     int64(dirMode(entry)),
				ModTime:  epoch,
			}); err != nil {
				return nil, err
			}
		case content.KindSymlink:
			if err := tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeSymlink,
				Name:     entry.Dst,
				Linkname: entry.Src,
				Mode:     int64(linkMode(entry)),
				ModTime:  epoch,
			}); err != nil {
				return nil, err
			}
		case content.KindFile:
			data, mode, err := readSource(sourceRoot, entry)
			if err != nil {
				return nil, err
			}
			if err := tw.WriteHeader(&tar.Header{
				Typeflag: tar.TypeReg,
				Name:     entry.Dst,
				Size:     int64(len(data)),
				Mode:     int64(mode),
				ModTime:  epoch,
			}); err != nil {
				return nil, err
			}
			if _, err := tw.Write(data); err != nil {
				return nil, err
			}
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildZip(entries []content.Entry, sourceRoot string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range entries {
		switch entry.Kind {
		case content.KindDir:
			header := &zip.FileHeader{Name: entry.Dst + "/", Modified: epoch}
			header.SetMode(fs.ModeDir | dirMode(entry))
			if _, err := zw.CreateHeader(header); err != nil {
				return nil, err
			}
		case content.KindSymlink:
			header := &zip.FileHeader{Name: entry.Dst, Method: zip.Store, Modified: epoch}
			header.SetMode(fs.ModeSymlink | linkMode(entry))
			w, err := zw.CreateHeader(header)
			if err != nil {
				return nil, err
			}
			if _, err := w.Write([]byte(entry.Src)); err != nil {
				return nil, err
			}
		case content.KindFile:
			data, mode, err := readSource(sourceRoot, entry)
			if err != nil {
				return nil, err
			}
			header := &zip.FileHeader{Name: entry.Dst, Method: zip.Deflate, Modified: epoch}
			header.SetMode(mode)
			w, err := zw.CreateHeader(header)
			if err != nil {
				return nil, err
			}
			if _, err := w.Write(data); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dirMode(entry content.Entry) fs.FileMode {
	if entry.Mode != 0 {
		return entry.Mode
	}
	return 0o755
}

func linkMode(entry content.Entry) fs.FileMode {
	if entry.Mode != 0 {
		return entry.Mode
	}
	return 0o777
}
