package goToken

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/goToken/internal/audit"
)

// Engine issues and verifies tokens under one Config. Build it with New().Build(); it is
// safe for concurrent use afterwards.
type Engine struct {
	key      Key
	tokens   TokenBuilder
	verifier *Verifier
	replay   bool
	metrics  *Metrics
	audit    *audit.Dispatcher
	logger   *slog.Logger
	now      func() time.Time
}

// IssueRequest describes a single token to issue.
type IssueRequest struct {
	Subject string
	// Audience overrides the configured audience when set.
	Audience string
	// NotBefore sets nbf when non-zero.
	NotBefore time.Time
	Claims    MapClaims
	// Refresh applies the refresh lifetime. IssuePair ignores it.
	Refresh   bool
	Sensitive bool
}

// Close flushes the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the current metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Key returns the signing key.
func (e *Engine) Key() Key {
	if e == nil {
		return Key{}
	}
	return e.key
}

// Token returns a TokenBuilder preconfigured from the Engine's Config. Changes to the
// returned value do not affect the Engine.
func (e *Engine) Token() TokenBuilder {
	if e == nil {
		return NewTokenBuilder().fail(ErrEngineNotReady)
	}
	return e.tokens
}

// Verifier returns the Engine's verifier. Calls through it bypass metrics and audit.
func (e *Engine) Verifier() *Verifier {
	if e == nil {
		return nil
	}
	return e.verifier
}

// ReplayProtected reports whether Verify consumes jti values through a ReplayGuard.
func (e *Engine) ReplayProtected() bool {
	return e != nil && e.replay
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

func (e *Engine) builderFor(req IssueRequest) TokenBuilder {
	tb := e.tokens
	if req.Subject != "" {
		tb = tb.WithSubject(req.Subject)
	}
	if req.Audience != "" {
		tb = tb.WithAudience(req.Audience)
	}
	if !req.NotBefore.IsZero() {
		tb = tb.WithNotBeforeTime(req.NotBefore)
	}
	return tb
}

func (req IssueRequest) options() []SignOption {
	var opts []SignOption
	if req.Refresh {
		opts = append(opts, Refresh())
	}
	if req.Sensitive {
		opts = append(opts, Sensitive())
	}
	return opts
}

// Issue signs one token for req.
func (e *Engine) Issue(ctx context.Context, req IssueRequest) (string, error) {
	if e == nil || e.verifier == nil {
		return "", ErrEngineNotReady
	}

	token, err := e.builderFor(req).Sign(req.Claims, e.key, req.options()...)
	if err != nil {
		e.issueFailed(ctx, req, err)
		return "", err
	}

	if req.Refresh {
		e.metricInc(MetricIssueRefresh)
	} else {
		e.metricInc(MetricIssueAccess)
	}
	if req.Sensitive {
		e.metricInc(MetricIssueSensitive)
	}
	e.issued(ctx, req, token, req.Refresh)

	return token, nil
}

// IssuePair signs an access and a refresh token sharing one iat.
func (e *Engine) IssuePair(ctx context.Context, req IssueRequest) (TokenPair, error) {
	if e == nil || e.verifier == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	req.Refresh = false
	pair, err := e.builderFor(req).SignPair(req.Claims, e.key, req.options()...)
	if err != nil {
		e.issueFailed(ctx, req, err)
		return TokenPair{}, err
	}

	e.metricInc(MetricIssueAccess)
	e.metricInc(MetricIssueRefresh)
	if req.Sensitive {
		e.metricInc(MetricIssueSensitive)
		e.metricInc(MetricIssueSensitive)
	}
	e.issued(ctx, req, pair.AccessToken, false)
	e.issued(ctx, req, pair.RefreshToken, true)

	return pair, nil
}

func (e *Engine) issued(ctx context.Context, req IssueRequest, token string, refresh bool) {
	if e.audit == nil {
		return
	}
	kind := "access"
	if refresh {
		kind = "refresh"
	}
	event := AuditEvent{
		EventType: auditEventTokenIssued,
		Subject:   req.Subject,
		Algorithm: e.key.alg.String(),
		Success:   true,
		Kind:      kind,
	}
	if req.Sensitive {
		if _, claims, err := Decode(token, e.tokens.encoding); err == nil {
			event.TokenID = stringClaim(claims, ClaimID)
		}
	}
	e.emitAudit(ctx, event)
}

func (e *Engine) issueFailed(ctx context.Context, req IssueRequest, err error) {
	e.metricInc(MetricIssueFailure)
	e.logger.ErrorContext(ctx, "token issue failed",
		slog.String("subject", req.Subject),
		slog.Any("error", err),
	)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventIssueFailed,
		Subject:   req.Subject,
		Algorithm: e.key.alg.String(),
		Error:     err.Error(),
	})
}

// Verify checks raw with the Engine's verifier and records the outcome.
func (e *Engine) Verify(ctx context.Context, raw string) (*Token, error) {
	if e == nil || e.verifier == nil {
		return nil, ErrEngineNotReady
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	tok, err := e.verifier.Verify(ctx, raw)

	if !start.IsZero() {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	if err != nil {
		e.rejected(ctx, err)
		return nil, err
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventTokenVerified,
		Subject:   tok.Subject,
		TokenID:   tok.ID,
		Algorithm: tok.Header.Algorithm,
		Success:   true,
	})
	return tok, nil
}

func (e *Engine) rejected(ctx context.Context, err error) {
	e.metricInc(MetricVerifyFailure)

	eventType := auditEventTokenRejected
	switch {
	case errors.Is(err, ErrMalformedToken), errors.Is(err, ErrUnsupportedAlgorithm):
		e.metricInc(MetricVerifyMalformed)
	case errors.Is(err, ErrSignatureInvalid):
		e.metricInc(MetricVerifySignatureInvalid)
	case errors.Is(err, ErrTokenExpired):
		e.metricInc(MetricVerifyExpired)
	case errors.Is(err, ErrTokenNotYetValid):
		e.metricInc(MetricVerifyNotYetValid)
	case errors.Is(err, ErrTokenReplayed):
		e.metricInc(MetricReplayDetected)
		eventType = auditEventTokenReplayed
		e.logger.WarnContext(ctx, "one-time token replayed",
			slog.String("ip", clientIPFromContext(ctx)),
			slog.Any("error", err),
		)
	case errors.Is(err, ErrReplayUnavailable):
		e.metricInc(MetricReplayUnavailable)
		e.logger.ErrorContext(ctx, "replay backend unavailable", slog.Any("error", err))
	}

	e.emitAudit(ctx, AuditEvent{
		EventType: eventType,
		Algorithm: e.key.alg.String(),
		Error:     rejectReason(err),
	})
}

// rejectReason maps a verification error to a stable audit code.
func rejectReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenNotYetValid):
		return "not_yet_valid"
	case errors.Is(err, ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, ErrTokenReplayed):
		return "replayed"
	case errors.Is(err, ErrReplayUnavailable):
		return "replay_unavailable"
	default:
		return "error"
	}
}
