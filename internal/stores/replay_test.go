package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newReplayStoreTest(t *testing.T) (*ReplayStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReplayStore(rdb, "test"), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestReplayStoreFirstConsumeWins(t *testing.T) {
	store, _, done := newReplayStoreTest(t)
	defer done()
	ctx := context.Background()

	ok, err := store.Consume(ctx, "jti-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first consume: ok=%v err=%v", ok, err)
	}
	ok, err = store.Consume(ctx, "jti-1", time.Minute)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if ok {
		t.Fatal("expected second consume to be rejected")
	}

	ok, err = store.Consume(ctx, "jti-2", time.Minute)
	if err != nil || !ok {
		t.Fatalf("independent jti: ok=%v err=%v", ok, err)
	}
}

func TestReplayStoreRecordExpires(t *testing.T) {
	store, mr, done := newReplayStoreTest(t)
	defer done()
	ctx := context.Background()

	if ok, err := store.Consume(ctx, "jti-1", 2*time.Second); err != nil || !ok {
		t.Fatalf("consume: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("test:jti-1"); ttl != 2*time.Second {
		t.Fatalf("expected 2s ttl, got %v", ttl)
	}

	mr.FastForward(3 * time.Second)

	seen, err := store.Seen(ctx, "jti-1")
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if seen {
		t.Fatal("expected record to expire")
	}
}

func TestReplayStoreClampsShortTTL(t *testing.T) {
	store, mr, done := newReplayStoreTest(t)
	defer done()

	if _, err := store.Consume(context.Background(), "jti-1", -time.Hour); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ttl := mr.TTL("test:jti-1"); ttl != minReplayTTL {
		t.Fatalf("expected clamp to %v, got %v", minReplayTTL, ttl)
	}
}

func TestReplayStoreForget(t *testing.T) {
	store, _, done := newReplayStoreTest(t)
	defer done()
	ctx := context.Background()

	if _, err := store.Consume(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("consume: %v", err)
	}
	removed, err := store.Forget(ctx, "jti-1")
	if err != nil || !removed {
		t.Fatalf("forget: removed=%v err=%v", removed, err)
	}
	if ok, _ := store.Consume(ctx, "jti-1", time.Minute); !ok {
		t.Fatal("expected jti to be consumable after forget")
	}
}

func TestReplayStoreBackendFailure(t *testing.T) {
	store, mr, done := newReplayStoreTest(t)
	defer done()
	mr.Close()

	_, err := store.Consume(context.Background(), "jti-1", time.Minute)
	if !errors.Is(err, ErrReplayBackend) {
		t.Fatalf("expected ErrReplayBackend, got %v", err)
	}
}

func TestReplayStoreDefaultPrefix(t *testing.T) {
	s := NewReplayStore(nil, "")
	if got := s.key("abc"); got != "gtj:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}
