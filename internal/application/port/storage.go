package port

import (
	"context"
	"errors"
)

// ErrFileNotFound is returned by FileStorage when nothing is stored at a path
var ErrFileNotFound = errors.New("file not found")

// FileStorage defines receipt storage operations
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}
