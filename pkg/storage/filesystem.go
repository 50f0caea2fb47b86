package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystemSource reads schema documents from a local directory
type FileSystemSource struct {
	rootDir string
	fsys    fs.FS
}

// NewFileSystemSource creates a source rooted at rootDir, which must exist
func NewFileSystemSource(rootDir string) (*FileSystemSource, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema root %s is not a directory", rootDir)
	}
	return &FileSystemSource{rootDir: rootDir, fsys: os.DirFS(rootDir)}, nil
}

// Name implements schema.Source
func (s *FileSystemSource) Name() string { return TypeFilesystem }

// Root returns the directory the source reads from
func (s *FileSystemSource) Root() string { return s.rootDir }

// Path returns the on-disk path of file
func (s *FileSystemSource) Path(file string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(file))
}

// Fetch implements schema.Source. File names are slash-separated and may not
// leave the root directory.
func (s *FileSystemSource) Fetch(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(file) {
		return nil, fmt.Errorf("invalid schema file name %q: %w", file, fs.ErrInvalid)
	}
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return data, nil
}
