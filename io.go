// File: lixenwraith/settings/io.go
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize bounds how much of a settings file a backend reads.
const DefaultMaxFileSize int64 = 10 << 20

// fileBackend adapts a byte-level Codec to file paths.
type fileBackend struct {
	format      Format
	codec       Codec
	maxFileSize int64
}

// NewFileBackend creates a Backend that reads and atomically writes files
// through codec. A maxFileSize of zero or less disables the size check.
func NewFileBackend(format Format, codec Codec, maxFileSize int64) Backend {
	return &fileBackend{format: format, codec: codec, maxFileSize: maxFileSize}
}

// Read loads and decodes the file at path.
func (b *fileBackend) Read(path string) (*Tree, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
		}
		return nil, fmt.Errorf("failed to stat settings file '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("settings path '%s' is a directory", path)
	}
	if b.maxFileSize > 0 && info.Size() > b.maxFileSize {
		return nil, fmt.Errorf("%w: '%s' exceeds %d bytes", ErrFileTooLarge, path, b.maxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file '%s': %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if b.maxFileSize > 0 {
		reader = io.LimitReader(file, b.maxFileSize)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	tree, err := b.codec.Unmarshal(data)
	if err != nil {
		return nil, &ParseError{Path: path, Format: b.format, Err: err}
	}
	return tree, nil
}

// Write encodes tree and replaces the file at path atomically.
func (b *fileBackend) Write(tree *Tree, path string) error {
	data, err := b.codec.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode settings as %s: %w", b.format, err)
	}
	return atomicWriteFile(path, data)
}

// atomicWriteFile writes data to a temporary file beside path and renames
// it into place. The temporary file is removed on any failure.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory '%s': %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary settings file in '%s': %w", dir, err)
	}
	tmpPath := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary settings file '%s': %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on temporary settings file '%s': %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file '%s': %w", path, err)
	}
	return nil
}

// writeAndClose writes data, flushes it to disk and closes f.
func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
