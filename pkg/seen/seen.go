// Package seen records which photos a run has already used, so the same
// image is never placed twice.
//
// [Memory] keeps the set in a map for a single process. [Redis] keeps it in
// a Redis set, which lets several runs share one history.
package seen

import (
	"context"
	"sync"
)

// Set is a set of thumbnail URLs.
type Set interface {
	// Contains reports whether url has been used.
	Contains(ctx context.Context, url string) (bool, error)

	// Add marks url as used.
	Add(ctx context.Context, url string) error

	// Len returns the number of used urls.
	Len(ctx context.Context) (int, error)
}

// Memory is an in-process Set. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewMemory returns an empty in-process set.
func NewMemory() *Memory {
	return &Memory{urls: make(map[string]struct{})}
}

func (m *Memory) Contains(_ context.Context, url string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.urls[url]
	return ok, nil
}

func (m *Memory) Add(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.urls == nil {
		m.urls = make(map[string]struct{})
	}
	m.urls[url] = struct{}{}
	return nil
}

func (m *Memory) Len(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.urls), nil
}

var _ Set = (*Memory)(nil)
