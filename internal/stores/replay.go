package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrReplayBackend wraps Redis failures.
var ErrReplayBackend = errors.New("replay backend unavailable")

const (
	defaultReplayPrefix = "gtj"
	minReplayTTL        = time.Second
)

// ReplayStore records consumed token identifiers.
type ReplayStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewReplayStore(redisClient redis.UniversalClient, prefix string) *ReplayStore {
	if prefix == "" {
		prefix = defaultReplayPrefix
	}
	return &ReplayStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *ReplayStore) key(jti string) string {
	return s.prefix + ":" + jti
}

// Consume marks jti as used for ttl. It reports true only for the first caller.
func (s *ReplayStore) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl < minReplayTTL {
		ttl = minReplayTTL
	}
	ok, err := s.redis.SetNX(ctx, s.key(jti), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReplayBackend, err)
	}
	return ok, nil
}

// Seen reports whether jti has been consumed and not yet expired.
func (s *ReplayStore) Seen(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReplayBackend, err)
	}
	return n > 0, nil
}

// Forget removes a consumed jti. It is meant for tests and operator tooling.
func (s *ReplayStore) Forget(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReplayBackend, err)
	}
	return n > 0, nil
}
