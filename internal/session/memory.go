package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memorySweepInterval bounds how often Set scans for expired entries.
const memorySweepInterval = time.Minute

// MemoryBackend keeps every scope in one process-local map. Expired entries
// are swept on write.
type MemoryBackend struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry), now: time.Now}
}

// WithClock overrides the time source used for expiry.
func (b *MemoryBackend) WithClock(now func() time.Time) *MemoryBackend {
	b.now = now
	return b
}

// Scope implements Backend.
func (b *MemoryBackend) Scope(prefix string, defaultTTL time.Duration) Storage {
	return &memoryStorage{backend: b, prefix: prefix, ttl: defaultTTL}
}

// Len counts live entries across all scopes.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	n := 0
	for _, e := range b.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// sweep drops expired entries at most once per interval. Callers hold mu.
func (b *MemoryBackend) sweep(now time.Time) {
	if now.Sub(b.lastSweep) < memorySweepInterval {
		return
	}
	b.lastSweep = now
	for k, e := range b.entries {
		if e.expired(now) {
			delete(b.entries, k)
		}
	}
}

type memoryStorage struct {
	backend *MemoryBackend
	prefix  string
	ttl     time.Duration
}

func (s *memoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	full := s.prefix + key
	e, ok := b.entries[full]
	if !ok {
		return "", false, nil
	}
	if e.expired(b.now()) {
		delete(b.entries, full)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *memoryStorage) Set(_ context.Context, key, value string, ttl time.Duration) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.sweep(now)
	e := memoryEntry{value: value}
	if d := effectiveTTL(ttl, s.ttl); d > 0 {
		e.expiresAt = now.Add(d)
	}
	b.entries[s.prefix+key] = e
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) (bool, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	full := s.prefix + key
	e, ok := b.entries[full]
	if !ok {
		return false, nil
	}
	delete(b.entries, full)
	return !e.expired(b.now()), nil
}

func (s *memoryStorage) Clear(_ context.Context) error {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	for k := range b.entries {
		if strings.HasPrefix(k, s.prefix) {
			delete(b.entries, k)
		}
	}
	return nil
}
