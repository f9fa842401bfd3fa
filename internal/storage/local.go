package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores blobs as flat files under a single root directory.
// Originals are keyed by a random unique identifier, derived variants by
// the "<original>_<width>" convention, so every blob key has exactly one
// writer and no locking is needed.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Save(key string, r io.Reader) (string, error) {
	path := filepath.Join(l.root, key)
	if err := l.write(path, r); err != nil {
		return "", err
	}
	return path, nil
}

func (l *Local) Put(path string, data []byte) error {
	f, err := os.CreateTemp(l.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmp := f.Name()
	_ = f.Close()
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize blob: %w", err)
	}
	return nil
}

// write streams r into a temp file and renames it into place, so a blob
// is either fully present or absent.
func (l *Local) write(path string, r io.Reader) error {
	if err := os.MkdirAll(l.root, 0755); err != nil {
		return fmt.Errorf("failed to create storage root: %w", err)
	}

	f, err := os.CreateTemp(l.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob: %w", err)
	}
	tmp := f.Name()

	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write blob: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize blob: %w", err)
	}
	return nil
}

func (l *Local) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

func (l *Local) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (l *Local) Delete(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return ErrNotExist
	}
	return err
}

func (l *Local) IsAlive() bool {
	info, err := os.Stat(l.root)
	return err == nil && info.IsDir()
}
