package storage

import (
	"bytes"
	"errors"
	"sync"
)

// MemStore is an in-memory Store used by the bench harness and unit
// tests. It records every file ever created (rotation leaves the old
// session's contents inspectable) and can be scripted to fail the n-th
// Create call to exercise partial-failure paths.
type MemStore struct {
	mu      sync.Mutex
	files   map[string]*MemFile
	order   []string
	creates int

	// FailCreateAt makes the n-th Create (1-based) fail; 0 disables.
	FailCreateAt int
	// Unavailable simulates a missing card.
	Unavailable bool
}

var ErrMemCreate = errors.New("storage: scripted create failure")

func NewMemStore() *MemStore {
	return &MemStore{files: map[string]*MemFile{}}
}

func (s *MemStore) Create(name string) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.FailCreateAt != 0 && s.creates == s.FailCreateAt {
		return nil, ErrMemCreate
	}
	f := &MemFile{}
	s.files[name] = f
	s.order = append(s.order, name)
	return f, nil
}

func (s *MemStore) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Unavailable
}

// Names returns every file name ever created, in creation order.
func (s *MemStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns a created file by name, or nil.
func (s *MemStore) Get(name string) *MemFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[name]
}

// MemFile is an in-memory File with open/sync accounting.
type MemFile struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
	syncs  int
}

var ErrClosed = errors.New("storage: file closed")

func (f *MemFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrClosed
	}
	return f.buf.Write(p)
}

func (f *MemFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.syncs++
	return nil
}

func (f *MemFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *MemFile) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *MemFile) Syncs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

func (f *MemFile) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}
