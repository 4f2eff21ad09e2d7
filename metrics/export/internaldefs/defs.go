package internaldefs

import (
	goToken "github.com/MrEthical07/goToken"
)

// CounterDef names one counter.
type CounterDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram.
type HistogramDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// KindSeries is one labelled series of a KindFamily.
type KindSeries struct {
	ID   goToken.MetricID
	Kind string
}

// KindFamily exports several counters as one metric split by a kind label.
type KindFamily struct {
	Name   string
	Help   string
	Series []KindSeries
}

// KindLabel is the label key of every KindFamily.
const KindLabel = "kind"

// IssuedByKind splits signed tokens by the kind recorded on their audit events.
var IssuedByKind = KindFamily{
	Name: "gotoken_issued_total",
	Help: "Signed tokens by kind.",
	Series: []KindSeries{
		{ID: goToken.MetricIssueAccess, Kind: "access"},
		{ID: goToken.MetricIssueRefresh, Kind: "refresh"},
	},
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goToken.MetricIssueSensitive, Name: "gotoken_issue_sensitive_total", Help: "Signed tokens carrying a one-time jti."},
	{ID: goToken.MetricIssueFailure, Name: "gotoken_issue_failure_total", Help: "Failed signing attempts."},
	{ID: goToken.MetricVerifySuccess, Name: "gotoken_verify_success_total", Help: "Verified tokens."},
	{ID: goToken.MetricVerifyFailure, Name: "gotoken_verify_failure_total", Help: "Rejected tokens of any cause."},
	{ID: goToken.MetricVerifyMalformed, Name: "gotoken_verify_malformed_total", Help: "Tokens that could not be decoded."},
	{ID: goToken.MetricVerifySignatureInvalid, Name: "gotoken_verify_signature_invalid_total", Help: "Tokens with a mismatching signature."},
	{ID: goToken.MetricVerifyExpired, Name: "gotoken_verify_expired_total", Help: "Tokens presented at or after exp."},
	{ID: goToken.MetricVerifyNotYetValid, Name: "gotoken_verify_not_yet_valid_total", Help: "Tokens presented before nbf."},
	{ID: goToken.MetricReplayDetected, Name: "gotoken_replay_detected_total", Help: "Reused one-time tokens."},
	{ID: goToken.MetricReplayUnavailable, Name: "gotoken_replay_unavailable_total", Help: "Replay backend failures."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goToken.MetricVerifyLatency, Name: "gotoken_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds are the upper bounds in seconds, matching the core bucket layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix encodes HistogramBounds for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
