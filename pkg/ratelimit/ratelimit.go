package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Rule is a fixed-window attempt budget.
type Rule struct {
	Name   string
	Max    int
	Window time.Duration
}

// Presets used by the portal.
var (
	FormSubmission = Rule{Name: "form", Max: 3, Window: time.Hour}
	LoginAttempt   = Rule{Name: "login", Max: 5, Window: 15 * time.Minute}
	APIRequest     = Rule{Name: "api", Max: 100, Window: time.Minute}
)

// Decision is the outcome of one attempt.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts attempts per identifier.
type Limiter interface {
	Allow(ctx context.Context, id string) (Decision, error)
	Reset(ctx context.Context, id string) error
	Rule() Rule
}

type window struct {
	count   int
	resetAt time.Time
}

// Memory is a process-local limiter. The window opens on the first attempt
// and a new one starts once it has elapsed.
type Memory struct {
	rule Rule
	now  func() time.Time

	mu        sync.Mutex
	attempts  map[string]*window
	lastSweep time.Time
}

// NewMemory builds an in-process limiter for rule.
func NewMemory(rule Rule) *Memory {
	return &Memory{rule: rule, now: time.Now, attempts: make(map[string]*window)}
}

// WithClock overrides the time source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	if now != nil {
		m.now = now
	}
	return m
}

// Rule returns the configured budget.
func (m *Memory) Rule() Rule {
	return m.rule
}

// Allow records an attempt for id. Denied attempts are not counted.
func (m *Memory) Allow(_ context.Context, id string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	rec, ok := m.attempts[id]
	if !ok || now.After(rec.resetAt) {
		rec = &window{count: 1, resetAt: now.Add(m.rule.Window)}
		m.attempts[id] = rec
		return Decision{Allowed: true, Remaining: m.rule.Max - 1, ResetAt: rec.resetAt}, nil
	}
	if rec.count >= m.rule.Max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: rec.resetAt}, nil
	}
	rec.count++
	return Decision{Allowed: true, Remaining: max(0, m.rule.Max-rec.count), ResetAt: rec.resetAt}, nil
}

// sweep drops closed windows at most once per rule window. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.rule.Window {
		return
	}
	m.lastSweep = now
	for id, rec := range m.attempts {
		if now.After(rec.resetAt) {
			delete(m.attempts, id)
		}
	}
}

// Tracked counts identifiers currently held, closed windows included.
func (m *Memory) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

// Remaining returns the attempts left for id without recording one.
func (m *Memory) Remaining(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.attempts[id]
	if !ok {
		return m.rule.Max
	}
	return max(0, m.rule.Max-rec.count)
}

// ResetAt returns when the current window for id closes.
func (m *Memory) ResetAt(id string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.attempts[id]
	if !ok {
		return time.Time{}, false
	}
	return rec.resetAt, true
}

// Reset forgets id.
func (m *Memory) Reset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, id)
	return nil
}
