package goToken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricVerifySuccess)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricVerifySuccess)
	}
}

func BenchmarkMetricsObserveVerifyLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	d := 40 * time.Microsecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricVerifyLatency, d)
		}
	})
}

func newMetricsBenchmarkEngine(b *testing.B, latency bool) *Engine {
	b.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithMetricsEnabled(true).
		WithLatencyHistograms(latency).
		Build()
	require.NoError(b, err)
	b.Cleanup(engine.Close)
	return engine
}

// Verify with counters only, then with the latency histogram, isolates the cost of timing.
func BenchmarkEngineVerifyMetricsParallel(b *testing.B) {
	for _, latency := range []bool{false, true} {
		name := "counters"
		if latency {
			name = "counters+latency"
		}
		b.Run(name, func(b *testing.B) {
			engine := newMetricsBenchmarkEngine(b, latency)
			token, err := engine.Issue(context.Background(), IssueRequest{Subject: "user-42"})
			require.NoError(b, err)

			b.ReportAllocs()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				ctx := context.Background()
				for pb.Next() {
					if _, err := engine.Verify(ctx, token); !assert.NoError(b, err) {
						return
					}
				}
			})
			b.StopTimer()

			snap := engine.MetricsSnapshot()
			require.GreaterOrEqual(b, snap.Counters[MetricVerifySuccess], uint64(b.N))
		})
	}
}

// Rejections touch two counters each: the failure total and the per-cause counter.
func BenchmarkEngineVerifyRejectedMetricsParallel(b *testing.B) {
	engine := newMetricsBenchmarkEngine(b, true)
	token, err := engine.Issue(context.Background(), IssueRequest{Subject: "user-42"})
	require.NoError(b, err)
	tampered := token[:len(token)-1] + "0"
	if tampered == token {
		tampered = token[:len(token)-1] + "1"
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, err := engine.Verify(ctx, tampered); !assert.ErrorIs(b, err, ErrSignatureInvalid) {
				return
			}
		}
	})
	b.StopTimer()

	snap := engine.MetricsSnapshot()
	require.Equal(b, snap.Counters[MetricVerifyFailure], snap.Counters[MetricVerifySignatureInvalid],
		"per-cause and total failure counters diverged")
}

func BenchmarkEngineIssueMetricsParallel(b *testing.B) {
	engine := newMetricsBenchmarkEngine(b, false)
	claims := MapClaims{"role": "admin"}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, err := engine.Issue(ctx, IssueRequest{Subject: "user-42", Claims: claims, Sensitive: true}); !assert.NoError(b, err) {
				return
			}
		}
	})
}
