// Package storage provides the local filesystem implementation of the
// dataset file store.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileStore reads dataset files from a base directory. Paths are
// confined to the base directory; escapes are rejected.
type LocalFileStore struct {
	basePath string
}

// NewLocalFileStore creates a store rooted at basePath
func NewLocalFileStore(basePath string) *LocalFileStore {
	return &LocalFileStore{basePath: basePath}
}

// Read returns the content of the file at the given relative path
func (s *LocalFileStore) Read(_ context.Context, path string) ([]byte, error) {
	full := filepath.Join(s.basePath, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, filepath.Clean(s.basePath)) {
		return nil, fmt.Errorf("path %q escapes storage root", path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}
	return data, nil
}
