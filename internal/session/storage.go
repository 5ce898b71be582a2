// Package session keeps per-browser auth state on the server. Every browser
// owns a durable scope that outlives tabs and a transient scope bound to one
// tab; both are keyed by cookies set in the session middleware.
package session

import (
	"context"
	"time"
)

// NoExpiry stores a value until it is deleted.
const NoExpiry time.Duration = -1

// Storage is a string key/value scope. A zero ttl on Set means the scope's
// default lifetime.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// Backend hands out isolated storage scopes.
type Backend interface {
	Scope(prefix string, defaultTTL time.Duration) Storage
}

func effectiveTTL(ttl, fallback time.Duration) time.Duration {
	if ttl == 0 {
		return fallback
	}
	return ttl
}
