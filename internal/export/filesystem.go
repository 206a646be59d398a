package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nido-go/internal/nido"
)

// FileSystemExporter writes export payloads as files under a root directory.
type FileSystemExporter struct {
	name string
	root string
}

// NewFileSystemExporter creates a filesystem exporter rooted at the given path.
func NewFileSystemExporter(name, root string) (*FileSystemExporter, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	return &FileSystemExporter{name: name, root: root}, nil
}

// Put writes a payload to <root>/<name>, replacing any previous file.
// The write is atomic: data goes to a temp file first, then a rename.
func (e *FileSystemExporter) Put(name string, r io.Reader, size int64) error {
	destPath := filepath.Join(e.root, filepath.Base(name))

	tmpFile, err := os.CreateTemp(e.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write payload: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		os.Remove(tmpPath)
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move payload into place: %w", err)
	}

	return nil
}

// ValidateSetup verifies that the export root exists and is a directory.
func (e *FileSystemExporter) ValidateSetup() error {
	info, err := os.Stat(e.root)
	if err != nil {
		return fmt.Errorf("export root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("export root is not a directory: %s", e.root)
	}
	return nil
}

// Root returns the export root directory.
func (e *FileSystemExporter) Root() string {
	return e.root
}

// Compile-time check that FileSystemExporter implements the nido.Exporter interface.
var _ nido.Exporter = (*FileSystemExporter)(nil)
