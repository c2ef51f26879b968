package version

import (
	"context"
	"sync"
)

// KeyedMutex provides one mutual-exclusion token per key. Acquisition is
// context-aware and queued callers are served in FIFO order. The zero
// value is not usable; call NewKeyedMutex.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	// ch holds the token: receiving acquires, sending releases.
	ch chan struct{}

	// holders counts the current holder plus queued waiters, so the
	// entry can be dropped once nobody references the key.
	holders int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*lockEntry{}}
}

// Lock acquires the token for key, blocking until it is free or the
// context is done. On success the returned release function must be
// called exactly once, on every path including failures.
func (m *KeyedMutex) Lock(ctx context.Context, key string) (release func(), err error) {
	m.mu.Lock()
	entry, ok := m.locks[key]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		entry.ch <- struct{}{}
		m.locks[key] = entry
	}
	entry.holders++
	m.mu.Unlock()

	select {
	case <-entry.ch:
		return func() { m.release(key, entry) }, nil
	case <-ctx.Done():
		m.abandon(key, entry)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) release(key string, entry *lockEntry) {
	entry.ch <- struct{}{}
	m.abandon(key, entry)
}

func (m *KeyedMutex) abandon(key string, entry *lockEntry) {
	m.mu.Lock()
	entry.holders--
	if entry.holders == 0 {
		delete(m.locks, key)
	}
	m.mu.Unlock()
}
