package goToken

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a LintWarning.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is a valid but questionable setting.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the output of Config.Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	codes := make([]string, 0, len(r))
	for _, w := range r {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity returns warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(hits))
	for _, w := range hits {
		msgs = append(msgs, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

const (
	lintMaxLeeway         = 30 * time.Second
	lintMaxAccessLifetime = 86400
	lintMaxRefreshSeconds = 2592000
)

// minSecretBytes is the HMAC output size; shorter secrets weaken the key.
var minSecretBytes = map[Algorithm]int{
	HS256: 32,
	HS384: 48,
	HS512: 64,
}

// Lint reports settings that pass Validate but are risky in production.
// It never fails; unparsable fields are left to Validate.
func (c Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if alg, err := ParseAlgorithm(c.Token.Algorithm); err == nil && c.Token.Secret != "" {
		if min := minSecretBytes[alg]; len(c.Token.Secret) < min {
			add("secret_short", LintHigh, "%s secret has %d bytes, want at least %d", alg, len(c.Token.Secret), min)
		}
	}

	access, accessErr := resolveLifetime(c.Token.AccessLifetime)
	refresh, refreshErr := resolveLifetime(c.Token.RefreshLifetime)
	if accessErr == nil && access > lintMaxAccessLifetime {
		add("access_lifetime_long", LintWarn, "access lifetime %ds exceeds one day", access)
	}
	if refreshErr == nil && refresh > lintMaxRefreshSeconds {
		add("refresh_lifetime_long", LintWarn, "refresh lifetime %ds exceeds one month", refresh)
	}
	if accessErr == nil && refreshErr == nil && refresh < access {
		add("refresh_shorter_than_access", LintHigh, "refresh lifetime %ds is shorter than access lifetime %ds", refresh, access)
	}

	if c.Verify.Leeway > lintMaxLeeway {
		add("leeway_large", LintWarn, "leeway %s exceeds %s", c.Verify.Leeway, lintMaxLeeway)
	}
	if c.Token.Issuer != "" && c.Verify.ExpectedIssuer == "" {
		add("issuer_unchecked", LintInfo, "tokens carry iss %q but Verify does not check it", c.Token.Issuer)
	}
	if c.Token.Audience != "" && c.Verify.ExpectedAudience == "" {
		add("audience_unchecked", LintInfo, "tokens carry aud %q but Verify does not check it", c.Token.Audience)
	}
	if c.Token.LegacyData {
		add("legacy_data_enabled", LintInfo, "payload duplicates custom claims under %q", ClaimLegacyData)
	}
	if !c.Replay.Enabled {
		add("replay_disabled", LintInfo, "sensitive tokens can be used more than once")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "no audit events are emitted")
	}

	return ws
}

func resolveLifetime(s string) (int64, error) {
	l, err := ParseLifetime(s)
	if err != nil {
		return 0, err
	}
	return l.Resolve()
}
