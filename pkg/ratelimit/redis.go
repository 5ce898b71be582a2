package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares attempt counters across instances. Denied attempts still
// increment the counter, which only affects the reported remaining count.
type Redis struct {
	client redis.Cmdable
	rule   Rule
	prefix string
}

// NewRedis builds a Redis-backed limiter for rule.
func NewRedis(client redis.Cmdable, rule Rule) *Redis {
	return &Redis{client: client, rule: rule, prefix: "ratelimit:" + rule.Name + ":"}
}

// Rule returns the configured budget.
func (r *Redis) Rule() Rule {
	return r.rule
}

// Allow records an attempt for id.
func (r *Redis) Allow(ctx context.Context, id string) (Decision, error) {
	key := r.prefix + id
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr rate limit %s: %w", key, err)
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, key, r.rule.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("expire rate limit %s: %w", key, err)
		}
	}

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ttl rate limit %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = r.rule.Window
	}

	return Decision{
		Allowed:   count <= int64(r.rule.Max),
		Remaining: max(0, r.rule.Max-int(count)),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Reset forgets id.
func (r *Redis) Reset(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}
