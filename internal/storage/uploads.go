// Package storage persists uploaded images.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// UploadStore writes uploads into a single flat directory. Files are never
// removed. Without Unique, a second upload with the same sanitised name
// replaces the first.
type UploadStore struct {
	Dir    string
	Unique bool
}

// NewUploadStore creates dir if needed.
func NewUploadStore(dir string, unique bool) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{Dir: dir, Unique: unique}, nil
}

// Save copies r to a file named after the already sanitised name and returns
// its path.
func (s *UploadStore) Save(name string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	if s.Unique {
		name = uuid.NewString() + "_" + name
	}

	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
