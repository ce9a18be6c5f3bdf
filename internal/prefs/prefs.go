// Package prefs persists client preferences and the activity log.
package prefs

import (
	"errors"
	"sort"
	"sync"
)

// Preference keys
const (
	KeyActiveCollection = "activeColl"
	KeyColorTheme       = "colorTheme"
)

// ErrNotFound is returned by Get for a key that was never set
var ErrNotFound = errors.New("preference not set")

// Prefs is a string key/value store scoped to one gateway profile
type Prefs interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// ActivityLog records actions taken against the gateway
type ActivityLog interface {
	Record(e *Entry) error
	Recent(limit int) ([]Entry, error)
}

// Backend is everything the application persists for a profile
type Backend interface {
	Prefs
	ActivityLog
}

// Memory is a non-persistent Backend
type Memory struct {
	mu      sync.Mutex
	values  map[string]string
	entries []Entry
}

// NewMemory returns an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Record(e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.entries) + 1)
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = now()
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *Memory) Recent(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
