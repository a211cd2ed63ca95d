package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps each collection in <dir>/<collection>.json
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend rooted at dir, creating dir if needed
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Name() string {
	return "file"
}

// Path returns the file a collection is stored in
func (b *FileBackend) Path(c Collection) string {
	return filepath.Join(b.dir, string(c)+".json")
}

func (b *FileBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.Path(c))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", b.Path(c), err)
	}
	return data, nil
}

// Write replaces the collection file atomically: the document goes to a
// temporary file in the same directory which is then renamed over the target.
func (b *FileBackend) Write(ctx context.Context, c Collection, document []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := b.Path(c)
	tmp, err := os.CreateTemp(b.dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(document)); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// Ping checks that the data directory is still usable
func (b *FileBackend) Ping(ctx context.Context) error {
	info, err := os.Stat(b.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.dir)
	}
	return nil
}

func (b *FileBackend) Close(ctx context.Context) error {
	return nil
}
