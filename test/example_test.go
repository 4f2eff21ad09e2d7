package test

import (
	"context"
	"fmt"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/redis/go-redis/v9"
)

// ExampleTokenBuilder_Sign signs a token with a fixed clock so the output is stable.
func ExampleTokenBuilder_Sign() {
	key, err := goToken.NewKey("s3cr3t", "HS256")
	if err != nil {
		panic(err)
	}

	token, err := goToken.NewTokenBuilder().
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }).
		WithIssuer("svc-a").
		WithSubject("user-42").
		Sign(goToken.MapClaims{"role": "admin"}, key)
	if err != nil {
		panic(err)
	}
	fmt.Println(token)
	// Output:
	// eyJ0eXAiOiJKV1QiLCJhbGciOiJIUzI1NiJ9.eyJleHAiOjE3MDAwMDcyMDAsImlhdCI6MTcwMDAwMDAwMCwiaXNzIjoic3ZjLWEiLCJyb2xlIjoiYWRtaW4iLCJzdWIiOiJ1c2VyLTQyIn0=.ea7090dc97c2c8d5c1e259e14156201f5b587fd667da9da845ba5c9c8677f0dc
}

// ExampleParseLifetime resolves presets and plain seconds.
func ExampleParseLifetime() {
	for _, s := range []string{"1day", "1week", "1month", "900"} {
		l, err := goToken.ParseLifetime(s)
		if err != nil {
			panic(err)
		}
		secs, _ := l.Resolve()
		fmt.Println(s, secs)
	}
	// Output:
	// 1day 86400
	// 1week 604800
	// 1month 2592000
	// 900 900
}

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := goToken.DefaultConfig()
	cfg.Token.Secret = "change-me-change-me-change-me-32"
	cfg.Replay.Enabled = true

	engine, _ := goToken.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithMetricsEnabled(true).
		Build()
	_ = engine
}

// ExampleEngine_Verify shows a typical verification call.
func ExampleEngine_Verify() {
	var engine *goToken.Engine
	tok, err := engine.Verify(context.Background(), "header.payload.signature")
	if err != nil {
		_ = err
		return
	}
	_ = tok.Subject
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goToken.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}
