// Package storage abstracts the removable card the instrument records
// to: create a file, append, query size, force buffered data to media.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is one open trace file on the card.
type File interface {
	io.Writer
	// Sync commits buffered writes to the medium.
	Sync() error
	Close() error
}

// Store creates trace files. Create truncates any previous file of the
// same name; Available reports whether the medium is mounted at all.
type Store interface {
	Create(name string) (File, error)
	Available() bool
}

// ─── Disk store ─────────────────────────────────────────────────────────

// DiskStore writes under a mount directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: mount %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: mount %s is not a directory", dir)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Create(name string) (File, error) {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", name, err)
	}
	return f, nil
}

func (s *DiskStore) Available() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Dir returns the mount directory.
func (s *DiskStore) Dir() string { return s.dir }
