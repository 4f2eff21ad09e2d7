package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goToken "github.com/MrEthical07/goToken"
)

type fakeSource struct {
	snapshot goToken.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goToken.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                     { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goToken.MetricsSnapshot{
			Counters:   map[goToken.MetricID]uint64{},
			Histograms: map[goToken.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goToken.MetricsSnapshot{
			Counters: map[goToken.MetricID]uint64{
				goToken.MetricIssueAccess: 7,
			},
			Histograms: map[goToken.MetricID][]uint64{
				goToken.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, `gotoken_issued_total{kind="access"} 7`) {
		t.Fatalf("expected access series in output, got:\n%s", out)
	}
	if !strings.Contains(out, `gotoken_issued_total{kind="refresh"} 0`) {
		t.Fatalf("expected zero refresh series in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gotoken_verify_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gotoken_verify_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gotoken_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goToken.MetricsSnapshot{
			Counters:   map[goToken.MetricID]uint64{goToken.MetricVerifySuccess: 1},
			Histograms: map[goToken.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRenderFromEngine(t *testing.T) {
	cfg := goToken.DefaultConfig()
	cfg.Token.Secret = "exporter-secret"
	engine, err := goToken.New().WithConfig(cfg).WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	token, err := engine.Issue(context.Background(), goToken.IssueRequest{Subject: "user-42"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := engine.Verify(context.Background(), token); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	out := NewPrometheusExporter(engine).Render()
	for _, want := range []string{
		`gotoken_issued_total{kind="access"} 1`,
		"gotoken_verify_success_total 1",
		"gotoken_verify_failure_total 0",
		"# TYPE gotoken_verify_latency_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestRenderIssuedByKind(t *testing.T) {
	cfg := goToken.DefaultConfig()
	cfg.Token.Secret = "exporter-secret"
	engine, err := goToken.New().WithConfig(cfg).WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.IssuePair(context.Background(), goToken.IssueRequest{Subject: "user-42", Sensitive: true}); err != nil {
		t.Fatalf("issue pair failed: %v", err)
	}

	out := NewPrometheusExporter(engine).Render()
	for _, want := range []string{
		"# TYPE gotoken_issued_total counter\n",
		`gotoken_issued_total{kind="access"} 1`,
		`gotoken_issued_total{kind="refresh"} 1`,
		"gotoken_issue_sensitive_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "# TYPE gotoken_issued_total") != 1 {
		t.Fatalf("kind series must share one family header, got:\n%s", out)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goToken.MetricsSnapshot{
			Counters: map[goToken.MetricID]uint64{
				goToken.MetricIssueAccess:    1000,
				goToken.MetricIssueRefresh:   400,
				goToken.MetricVerifySuccess:  5000,
				goToken.MetricVerifyFailure:  40,
				goToken.MetricVerifyExpired:  30,
				goToken.MetricReplayDetected: 2,
				goToken.MetricIssueSensitive: 20,
			},
			Histograms: map[goToken.MetricID][]uint64{
				goToken.MetricVerifyLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
