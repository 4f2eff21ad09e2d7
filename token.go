package goToken

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

const (
	// DefaultAccessLifetime is the access-token lifetime of a fresh TokenBuilder.
	DefaultAccessLifetime = 7200 * time.Second
	// DefaultRefreshLifetime is the refresh-token lifetime of a fresh TokenBuilder.
	DefaultRefreshLifetime = 86400 * time.Second
)

// TokenBuilder accumulates per-token settings and signs tokens.
//
// TokenBuilder is a value: every With method returns a modified copy and leaves the receiver
// untouched, so a configured builder can be shared between goroutines. Configuration errors
// are recorded in the returned copy and reported by Err and Sign.
type TokenBuilder struct {
	accessSeconds  int64
	refreshSeconds int64

	issuer    string
	subject   string
	audience  string
	notBefore string

	now        func() time.Time
	newID      IDGenerator
	encoding   jwt.Encoding
	legacyData bool

	err error
}

// NewTokenBuilder returns a builder with default lifetimes, the system clock, hex jti values
// and standard base64 segments.
func NewTokenBuilder() TokenBuilder {
	return TokenBuilder{
		accessSeconds:  int64(DefaultAccessLifetime / time.Second),
		refreshSeconds: int64(DefaultRefreshLifetime / time.Second),
		now:            time.Now,
		newID:          NewHexID,
		encoding:       jwt.EncodingStd,
	}
}

func (b TokenBuilder) fail(err error) TokenBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WithAccessLifetime sets the access lifetime. An invalid lifetime keeps the previous value
// and records the error.
func (b TokenBuilder) WithAccessLifetime(l Lifetime) TokenBuilder {
	secs, err := l.Resolve()
	if err != nil {
		return b.fail(fmt.Errorf("access lifetime: %w", err))
	}
	b.accessSeconds = secs
	return b
}

// WithRefreshLifetime sets the refresh lifetime. An invalid lifetime keeps the previous value
// and records the error.
func (b TokenBuilder) WithRefreshLifetime(l Lifetime) TokenBuilder {
	secs, err := l.Resolve()
	if err != nil {
		return b.fail(fmt.Errorf("refresh lifetime: %w", err))
	}
	b.refreshSeconds = secs
	return b
}

// WithIssuer sets iss. An empty issuer leaves the claim out.
func (b TokenBuilder) WithIssuer(issuer string) TokenBuilder {
	b.issuer = issuer
	return b
}

// WithSubject sets sub. An empty subject records ErrInvalidArgument and leaves sub unset.
func (b TokenBuilder) WithSubject(subject string) TokenBuilder {
	if subject == "" {
		return b.fail(fmt.Errorf("%w: subject is empty", ErrInvalidArgument))
	}
	b.subject = subject
	return b
}

// WithAudience sets aud. An empty audience leaves the claim out.
func (b TokenBuilder) WithAudience(audience string) TokenBuilder {
	b.audience = audience
	return b
}

// WithNotBefore sets nbf to a Unix-seconds string. The value is not validated.
func (b TokenBuilder) WithNotBefore(timestamp string) TokenBuilder {
	b.notBefore = timestamp
	return b
}

// WithNotBeforeTime sets nbf from t.
func (b TokenBuilder) WithNotBeforeTime(t time.Time) TokenBuilder {
	b.notBefore = strconv.FormatInt(t.Unix(), 10)
	return b
}

// WithClock replaces the clock used for iat. A nil clock restores time.Now.
func (b TokenBuilder) WithClock(now func() time.Time) TokenBuilder {
	if now == nil {
		now = time.Now
	}
	b.now = now
	return b
}

// WithIDGenerator replaces the jti source. A nil generator restores NewHexID.
func (b TokenBuilder) WithIDGenerator(gen IDGenerator) TokenBuilder {
	if gen == nil {
		gen = NewHexID
	}
	b.newID = gen
	return b
}

// WithEncoding selects the header and payload segment encoding.
func (b TokenBuilder) WithEncoding(enc jwt.Encoding) TokenBuilder {
	b.encoding = enc
	return b
}

// WithLegacyData adds a nested "data" claim holding a copy of the custom claims.
func (b TokenBuilder) WithLegacyData(enabled bool) TokenBuilder {
	b.legacyData = enabled
	return b
}

// Err returns the first configuration error, if any.
func (b TokenBuilder) Err() error {
	return b.err
}

// AccessLifetime returns the configured access lifetime.
func (b TokenBuilder) AccessLifetime() time.Duration {
	return time.Duration(b.accessSeconds) * time.Second
}

// RefreshLifetime returns the configured refresh lifetime.
func (b TokenBuilder) RefreshLifetime() time.Duration {
	return time.Duration(b.refreshSeconds) * time.Second
}

// Subject returns sub and whether it is set.
func (b TokenBuilder) Subject() (string, bool) {
	return b.subject, b.subject != ""
}

// Issuer returns iss.
func (b TokenBuilder) Issuer() string { return b.issuer }

// Audience returns aud.
func (b TokenBuilder) Audience() string { return b.audience }

// NotBefore returns the nbf string.
func (b TokenBuilder) NotBefore() string { return b.notBefore }

// Encoding returns the segment encoding.
func (b TokenBuilder) Encoding() jwt.Encoding { return b.encoding }

// SignOption adjusts a single Sign call.
type SignOption func(*signOptions)

type signOptions struct {
	refresh   bool
	sensitive bool
}

// Refresh applies the refresh lifetime to exp.
func Refresh() SignOption {
	return func(o *signOptions) { o.refresh = true }
}

// Sensitive adds a fresh one-time jti for replay-resistant flows.
func Sensitive() SignOption {
	return func(o *signOptions) { o.sensitive = true }
}

// Sign returns "<header>.<payload>.<signature>" for claims signed with key.
//
// Standard claims (iat, exp, iss, sub, aud, nbf, jti) overwrite custom claims of the same
// name. exp is iat plus the access lifetime, or the refresh lifetime with Refresh.
func (b TokenBuilder) Sign(claims MapClaims, key Key, opts ...SignOption) (string, error) {
	var o signOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return b.sign(claims, key, b.issuedAt(), o)
}

// TokenPair is an access and refresh token issued at the same instant.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SignPair signs an access token and a refresh token sharing one iat. Refresh in opts is
// ignored; Sensitive gives each token its own jti.
func (b TokenBuilder) SignPair(claims MapClaims, key Key, opts ...SignOption) (TokenPair, error) {
	var o signOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	iat := b.issuedAt()

	o.refresh = false
	access, err := b.sign(claims, key, iat, o)
	if err != nil {
		return TokenPair{}, err
	}
	o.refresh = true
	refresh, err := b.sign(claims, key, iat, o)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		IssuedAt:         time.Unix(iat, 0),
		AccessExpiresAt:  time.Unix(iat+b.accessSeconds, 0),
		RefreshExpiresAt: time.Unix(iat+b.refreshSeconds, 0),
	}, nil
}

func (b TokenBuilder) issuedAt() int64 {
	if b.now == nil {
		return time.Now().Unix()
	}
	return b.now().Unix()
}

func (b TokenBuilder) sign(custom MapClaims, key Key, iat int64, o signOptions) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if err := key.check(); err != nil {
		return "", err
	}

	headerJSON, err := json.Marshal(Header{Type: headerType, Algorithm: string(key.alg)})
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}

	claims, err := b.claimSet(custom, iat, o)
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	header := b.encoding.EncodeSegment(headerJSON)
	payload := b.encoding.EncodeSegment(payloadJSON)
	signingInput := jwt.SigningInput(header, payload)

	sig, err := jwt.Sign(string(key.alg), signingInput, key.secret)
	if err != nil {
		return "", err
	}
	return signingInput + "." + sig, nil
}

// claimSet overlays the standard claims on a copy of custom.
func (b TokenBuilder) claimSet(custom MapClaims, iat int64, o signOptions) (MapClaims, error) {
	out := make(MapClaims, len(custom)+8)
	for k, v := range custom {
		out[k] = v
	}

	if b.legacyData {
		data := make(MapClaims, len(custom))
		for k, v := range custom {
			data[k] = v
		}
		out[ClaimLegacyData] = data
	}

	lifetime := b.accessSeconds
	if o.refresh {
		lifetime = b.refreshSeconds
	}
	out[ClaimIssuedAt] = iat
	out[ClaimExpiresAt] = iat + lifetime

	if b.issuer != "" {
		out[ClaimIssuer] = b.issuer
	}
	if b.subject != "" {
		out[ClaimSubject] = b.subject
	}
	if b.audience != "" {
		out[ClaimAudience] = b.audience
	}
	if b.notBefore != "" {
		out[ClaimNotBefore] = b.notBefore
	}
	if o.sensitive {
		gen := b.newID
		if gen == nil {
			gen = NewHexID
		}
		id, err := gen()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIDGeneration, err)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: empty id", ErrIDGeneration)
		}
		out[ClaimID] = id
	}

	return out, nil
}
