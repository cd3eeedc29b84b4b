package storage

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// FileInfo represents metadata about a file or folder
type FileInfo struct {
	Name         string
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Mode         fs.FileMode
}

// Backend defines the read-only storage operations the compare engine needs.
// Implementations include the local filesystem and in-memory filesystems.
type Backend interface {
	// ReadDir returns the entries of one directory level, sorted by name
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Root returns the absolute root this backend is anchored at
	Root() string

	// Close releases any resources held by the backend
	Close() error
}
