package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File is the single file the task collection lives in.
type File struct {
	Path   string
	Format Format
}

// NewFile expands "~" in path and picks the format from its extension.
func NewFile(path string) *File {
	path = ExpandHome(path)
	return &File{Path: path, Format: FormatForPath(path)}
}

// EnsureExists creates an empty task file (and its directory) when none is
// present. It reports whether it created one.
func (f *File) EnsureExists() (bool, error) {
	_, err := os.Stat(f.Path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return false, err
	}
	fh, err := os.OpenFile(f.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}
	return true, fh.Close()
}

func (f *File) ReadAll() ([]byte, error) {
	return os.ReadFile(f.Path)
}

func (f *File) WriteAll(data []byte) error {
	return atomicWriteFile(f.Path, data, 0o644)
}

// Load reads and decodes the whole file.
func (f *File) Load() (*Tasks, error) {
	b, err := f.ReadAll()
	if err != nil {
		return nil, err
	}
	t, err := Decode(b, f.Format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	return t, nil
}

// Save encodes and writes the whole collection, returning the revision
// stamped into the file.
func (f *File) Save(t *Tasks) (string, error) {
	b, rev, err := Encode(t, f.Format)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", f.Path, err)
	}
	if err := f.WriteAll(b); err != nil {
		return "", err
	}
	return rev, nil
}
