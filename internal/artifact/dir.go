package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirStore publishes artifacts by copying them into a local directory.
type DirStore struct {
	name string
	dir  string
}

// NewDirStore returns a DirStore rooted at dir. The directory is created
// on first Put.
func NewDirStore(name, dir string) *DirStore {
	return &DirStore{name: name, dir: dir}
}

// Name implements Store.
func (s *DirStore) Name() string { return s.name }

// Put copies the source file to <dir>/<name>, preserving the executable
// bit of the built binary. The copy goes through a temporary file that is
// renamed into place, so a failed copy never leaves a partial file under
// the published name.
func (s *DirStore) Put(ctx context.Context, name, sourcePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", s.dir, err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open artifact source %s: %w", sourcePath, err)
	}
	defer src.Close()

	destPath := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", destPath, err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to copy artifact to %s: %w", destPath, err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to copy artifact to %s: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to copy artifact to %s: %w", destPath, err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish artifact %s: %w", destPath, err)
	}
	return nil
}
