package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archives"

	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/observability"
)

var bundleFormat = archives.CompressedArchive{
	Compression: archives.Gz{},
	Archival:    archives.Tar{},
}

// Bundle writes the static site in dir as a gzipped tarball at dest. Entries live below
// prefix so the tarball unpacks into the hosting base path. dest is replaced atomically.
func Bundle(ctx context.Context, dir, prefix, dest string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("static site: %w", err)
	}
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{dir: prefix})
	if err != nil {
		return 0, fmt.Errorf("collect %s: %w", dir, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return 0, fmt.Errorf("create bundle directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".bundle-*")
	if err != nil {
		return 0, fmt.Errorf("create bundle: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := bundleFormat.Archive(ctx, tmp, files); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("move bundle into place: %w", err)
	}
	observability.InfoContext(ctx, "Wrote static site bundle",
		logfields.Path(dest), logfields.Count(len(files)))
	return len(files), nil
}
