//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goToken "github.com/MrEthical07/goToken"
)

func TestReplayCompat_OneTimeTokenConsumedOnce(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine := newReplayEngine(t, rdb)
			ctx := context.Background()

			token, err := engine.Issue(ctx, goToken.IssueRequest{Subject: "alice", Sensitive: true})
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			tok, err := engine.Verify(ctx, token)
			if err != nil {
				t.Fatalf("first verify: %v", err)
			}
			if tok.ID == "" {
				t.Fatal("expected jti on sensitive token")
			}

			if _, err := engine.Verify(ctx, token); !errors.Is(err, goToken.ErrTokenReplayed) {
				t.Fatalf("expected ErrTokenReplayed, got %v", err)
			}

			ttl, err := rdb.TTL(ctx, "gtj:"+tok.ID).Result()
			if err != nil {
				t.Fatalf("ttl: %v", err)
			}
			if ttl <= 0 || ttl > 7200*time.Second {
				t.Fatalf("expected ttl within access lifetime, got %v", ttl)
			}
		})
	}
}

func TestReplayCompat_PlainTokensNotTracked(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine := newReplayEngine(t, rdb)
			ctx := context.Background()

			token, err := engine.Issue(ctx, goToken.IssueRequest{Subject: "alice"})
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			for i := 0; i < 3; i++ {
				if _, err := engine.Verify(ctx, token); err != nil {
					t.Fatalf("verify %d: %v", i, err)
				}
			}

			keys, err := rdb.Keys(ctx, "gtj:*").Result()
			if err != nil {
				t.Fatalf("keys: %v", err)
			}
			if len(keys) != 0 {
				t.Fatalf("expected no replay keys, got %v", keys)
			}
		})
	}
}

func TestReplayCompat_ConcurrentVerifySingleWinner(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine := newReplayEngine(t, rdb)
			ctx := context.Background()

			token, err := engine.Issue(ctx, goToken.IssueRequest{Subject: "alice", Sensitive: true})
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			const workers = 32
			var (
				wg       sync.WaitGroup
				winners  atomic.Int64
				replayed atomic.Int64
				other    atomic.Int64
				start    = make(chan struct{})
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, err := engine.Verify(ctx, token)
					switch {
					case err == nil:
						winners.Add(1)
					case errors.Is(err, goToken.ErrTokenReplayed):
						replayed.Add(1)
					default:
						other.Add(1)
					}
				}()
			}
			close(start)
			wg.Wait()

			if winners.Load() != 1 {
				t.Fatalf("expected exactly one successful verify, got %d", winners.Load())
			}
			if replayed.Load() != workers-1 {
				t.Fatalf("expected %d replays, got %d (other errors %d)", workers-1, replayed.Load(), other.Load())
			}

			snap := engine.MetricsSnapshot()
			if got := snap.Counters[goToken.MetricReplayDetected]; got != workers-1 {
				t.Fatalf("expected replay metric %d, got %d", workers-1, got)
			}
		})
	}
}

func TestReplayCompat_PairTokensTrackedIndependently(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine := newReplayEngine(t, rdb)
			ctx := context.Background()

			pair, err := engine.IssuePair(ctx, goToken.IssueRequest{Subject: "alice", Sensitive: true})
			if err != nil {
				t.Fatalf("issue pair: %v", err)
			}

			access, err := engine.Verify(ctx, pair.AccessToken)
			if err != nil {
				t.Fatalf("verify access: %v", err)
			}
			refresh, err := engine.Verify(ctx, pair.RefreshToken)
			if err != nil {
				t.Fatalf("verify refresh: %v", err)
			}
			if access.ID == refresh.ID {
				t.Fatal("expected distinct jti per token in a pair")
			}

			ttl, err := rdb.TTL(ctx, "gtj:"+refresh.ID).Result()
			if err != nil {
				t.Fatalf("ttl: %v", err)
			}
			if ttl <= 7200*time.Second {
				t.Fatalf("expected refresh replay key to outlive the access lifetime, got %v", ttl)
			}
		})
	}
}
