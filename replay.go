package goToken

import (
	"context"
	"time"

	"github.com/MrEthical07/goToken/internal/stores"
	"github.com/redis/go-redis/v9"
)

// ReplayGuard records one-time token identifiers.
//
// Consume reports true the first time jti is seen and false on every later call until ttl
// elapses. Implementations must be safe for concurrent use.
type ReplayGuard interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// RedisReplayGuard keeps consumed jti values in Redis until their token expires.
type RedisReplayGuard struct {
	store *stores.ReplayStore
}

// NewRedisReplayGuard stores keys as "<prefix>:<jti>". An empty prefix uses "gtj".
func NewRedisReplayGuard(client redis.UniversalClient, prefix string) *RedisReplayGuard {
	return &RedisReplayGuard{store: stores.NewReplayStore(client, prefix)}
}

// Consume implements ReplayGuard.
func (g *RedisReplayGuard) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	return g.store.Consume(ctx, jti, ttl)
}

// Seen reports whether jti has already been consumed.
func (g *RedisReplayGuard) Seen(ctx context.Context, jti string) (bool, error) {
	return g.store.Seen(ctx, jti)
}
