// Package tracker decides whether a score file has new content since it was
// last processed, using the file's modification time as its fingerprint.
package tracker

import (
	"sync"
	"time"
)

// Table stores the last committed modification time per file path.
// Lookup returns ok=false when path has never been committed.
type Table interface {
	Lookup(path string) (modTime time.Time, ok bool, err error)
	Store(path string, modTime time.Time) error
}

// ShouldProcess reports whether path must be processed. It is false only when
// table already holds a time for path that is not older than modTime.
func ShouldProcess(table Table, path string, modTime time.Time) (bool, error) {
	recorded, ok, err := table.Lookup(path)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return modTime.After(recorded), nil
}

// Commit records modTime as the fingerprint of path, replacing any earlier one.
func Commit(table Table, path string, modTime time.Time) error {
	return table.Store(path, modTime)
}

// MemoryTable is a Table that lives for the lifetime of the process.
// The zero value is ready to use.
type MemoryTable struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryTable returns an empty in-memory table.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{entries: make(map[string]time.Time)}
}

func (m *MemoryTable) Lookup(path string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.entries[path]
	return t, ok, nil
}

func (m *MemoryTable) Store(path string, modTime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]time.Time)
	}
	m.entries[path] = modTime
	return nil
}

// Len returns the number of fingerprints held.
func (m *MemoryTable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
