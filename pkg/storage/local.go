package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sdejongh/dircmp/internal/platform"
)

// Local is a filesystem-based storage backend on top of an afero.Fs
type Local struct {
	fs       afero.Fs
	rootPath string
}

// NewLocal creates a backend rooted at a directory of the OS filesystem
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	return NewFromFs(afero.NewOsFs(), absPath)
}

// NewFromFs creates a backend rooted at a directory of any afero.Fs
func NewFromFs(fsys afero.Fs, rootPath string) (*Local, error) {
	info, err := fsys.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", rootPath)
	}

	return &Local{fs: fsys, rootPath: rootPath}, nil
}

func (l *Local) full(path string) string {
	if path == "" {
		return l.rootPath
	}
	return filepath.Join(l.rootPath, filepath.FromSlash(path))
}

// ReadDir returns the entries of one directory level
func (l *Local) ReadDir(ctx context.Context, path string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := l.full(path)
	entries, err := afero.ReadDir(l.fs, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		info := e
		p := filepath.Join(fullPath, e.Name())

		// Follow symlinks so linked folders compare as folders
		if e.Mode()&fs.ModeSymlink != 0 {
			if target, err := l.fs.Stat(p); err == nil {
				info = target
			}
		}

		files = append(files, FileInfo{
			Name:         e.Name(),
			Path:         p,
			RelativePath: platform.JoinRel(path, e.Name()),
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			IsDir:        info.IsDir(),
			Mode:         info.Mode(),
		})
	}

	return files, nil
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := l.fs.Open(l.full(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := l.fs.Stat(l.full(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.full(path)

	info, err := l.fs.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Name:         info.Name(),
		Path:         fullPath,
		RelativePath: path,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
		Mode:         info.Mode(),
	}, nil
}

// Root returns the backend root
func (l *Local) Root() string {
	return l.rootPath
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
