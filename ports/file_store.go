package ports

import "context"

// FileStore reads stored dataset content by storage path
type FileStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
}
