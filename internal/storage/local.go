package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalFileStore writes uploads below a base directory, one subdirectory per
// destination hint (attachments, profile_pictures, group_images).
type LocalFileStore struct {
	baseDir string
}

// NewLocalFileStore creates a new LocalFileStore rooted at baseDir.
func NewLocalFileStore(baseDir string) *LocalFileStore {
	return &LocalFileStore{baseDir: baseDir}
}

// Store writes the file under a random name, keeping the original extension
// from the hint. Returns the path relative to the base directory.
func (s *LocalFileStore) Store(r io.Reader, destinationHint string) (string, error) {
	dir := filepath.Dir(destinationHint)
	ext := filepath.Ext(destinationHint)

	targetDir := filepath.Join(s.baseDir, dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	target := filepath.Join(targetDir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return filepath.Join(dir, name), nil
}
