package goToken

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

const (
	maxTokenLength = 8192
	maxLeeway      = 2 * time.Minute
	tokenPartCount = 3
)

// Token is a verified token.
type Token struct {
	Raw       string
	Header    Header
	Claims    MapClaims
	IssuedAt  time.Time
	ExpiresAt time.Time
	// NotBefore is zero when the token has no nbf claim.
	NotBefore time.Time
	ID        string
	Subject   string
	Issuer    string
	Audience  string
}

// Verifier checks signatures, time windows and, optionally, one-time use.
// A Verifier is safe for concurrent use.
type Verifier struct {
	key      Key
	leeway   time.Duration
	issuer   string
	audience string
	now      func() time.Time
	replay   ReplayGuard
	encoding jwt.Encoding
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLeeway tolerates clock skew on exp and nbf.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.leeway = d }
}

// WithExpectedIssuer rejects tokens whose iss differs.
func WithExpectedIssuer(issuer string) VerifierOption {
	return func(v *Verifier) { v.issuer = issuer }
}

// WithExpectedAudience rejects tokens whose aud differs.
func WithExpectedAudience(audience string) VerifierOption {
	return func(v *Verifier) { v.audience = audience }
}

// WithVerifyClock replaces the clock used for time checks.
func WithVerifyClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// WithReplayGuard consumes the jti of every verified token that carries one.
func WithReplayGuard(guard ReplayGuard) VerifierOption {
	return func(v *Verifier) { v.replay = guard }
}

// WithSegmentEncoding must match the encoding the tokens were signed with.
func WithSegmentEncoding(enc jwt.Encoding) VerifierOption {
	return func(v *Verifier) { v.encoding = enc }
}

// NewVerifier returns a Verifier for tokens signed with key.
func NewVerifier(key Key, opts ...VerifierOption) (*Verifier, error) {
	if err := key.check(); err != nil {
		return nil, err
	}
	v := &Verifier{
		key:      key,
		now:      time.Now,
		encoding: jwt.EncodingStd,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.leeway < 0 || v.leeway > maxLeeway {
		return nil, fmt.Errorf("%w: leeway must be within [0, %s]", ErrInvalidArgument, maxLeeway)
	}
	return v, nil
}

// Verify checks raw and returns its claims.
//
// Checks run in order: shape, header algorithm, signature (constant time), payload, the
// [nbf, exp) window, expected issuer and audience, and finally one-time use of jti.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Token, error) {
	parts, header, err := splitToken(raw, v.encoding)
	if err != nil {
		return nil, err
	}
	if header.Algorithm != string(v.key.alg) {
		return nil, fmt.Errorf("%w: token alg %q, key alg %q", ErrUnsupportedAlgorithm, header.Algorithm, v.key.alg)
	}

	if err := jwt.Verify(header.Algorithm, jwt.SigningInput(parts[0], parts[1]), parts[2], v.key.secret); err != nil {
		if errors.Is(err, jwt.ErrMalformedSignature) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		return nil, err
	}

	claims, err := decodeClaims(parts[1], v.encoding)
	if err != nil {
		return nil, err
	}

	tok := &Token{
		Raw:      raw,
		Header:   header,
		Claims:   claims,
		ID:       stringClaim(claims, ClaimID),
		Subject:  stringClaim(claims, ClaimSubject),
		Issuer:   stringClaim(claims, ClaimIssuer),
		Audience: stringClaim(claims, ClaimAudience),
	}
	if err := v.checkTimes(tok); err != nil {
		return nil, err
	}

	if v.issuer != "" && tok.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: got %q", ErrIssuerMismatch, tok.Issuer)
	}
	if v.audience != "" && tok.Audience != v.audience {
		return nil, fmt.Errorf("%w: got %q", ErrAudienceMismatch, tok.Audience)
	}

	if v.replay != nil && tok.ID != "" {
		ttl := tok.ExpiresAt.Add(v.leeway).Sub(v.now())
		fresh, err := v.replay.Consume(ctx, tok.ID, ttl)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReplayUnavailable, err)
		}
		if !fresh {
			return nil, fmt.Errorf("%w: jti %s", ErrTokenReplayed, tok.ID)
		}
	}

	return tok, nil
}

func (v *Verifier) checkTimes(tok *Token) error {
	now := v.now()

	exp, ok, err := numericClaim(tok.Claims, ClaimExpiresAt)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing exp", ErrMalformedToken)
	}
	tok.ExpiresAt = exp
	if !now.Before(exp.Add(v.leeway)) {
		return fmt.Errorf("%w: at %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
	}

	nbf, ok, err := numericClaim(tok.Claims, ClaimNotBefore)
	if err != nil {
		return err
	}
	if ok {
		tok.NotBefore = nbf
		if now.Add(v.leeway).Before(nbf) {
			return fmt.Errorf("%w: until %s", ErrTokenNotYetValid, nbf.UTC().Format(time.RFC3339))
		}
	}

	iat, ok, err := numericClaim(tok.Claims, ClaimIssuedAt)
	if err != nil {
		return err
	}
	if ok {
		tok.IssuedAt = iat
	}
	return nil
}

// Decode splits and decodes raw without checking the signature or any claim.
// Use it for diagnostics only.
func Decode(raw string, enc jwt.Encoding) (Header, MapClaims, error) {
	parts, header, err := splitToken(raw, enc)
	if err != nil {
		return Header{}, nil, err
	}
	claims, err := decodeClaims(parts[1], enc)
	if err != nil {
		return Header{}, nil, err
	}
	return header, claims, nil
}

func splitToken(raw string, enc jwt.Encoding) ([]string, Header, error) {
	if raw == "" {
		return nil, Header{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if len(raw) > maxTokenLength {
		return nil, Header{}, fmt.Errorf("%w: exceeds %d bytes", ErrMalformedToken, maxTokenLength)
	}
	parts := strings.Split(raw, ".")
	if len(parts) != tokenPartCount {
		return nil, Header{}, fmt.Errorf("%w: expected %d segments, got %d", ErrMalformedToken, tokenPartCount, len(parts))
	}

	headerJSON, err := enc.DecodeSegment(parts[0])
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: decode header", ErrMalformedToken)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, Header{}, fmt.Errorf("%w: unmarshal header", ErrMalformedToken)
	}
	if header.Algorithm == "" {
		return nil, Header{}, fmt.Errorf("%w: missing alg", ErrMalformedToken)
	}
	if header.Type != headerType {
		return nil, Header{}, fmt.Errorf("%w: typ %q", ErrMalformedToken, header.Type)
	}
	return parts, header, nil
}

func decodeClaims(segment string, enc jwt.Encoding) (MapClaims, error) {
	payloadJSON, err := enc.DecodeSegment(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload", ErrMalformedToken)
	}
	dec := json.NewDecoder(bytes.NewReader(payloadJSON))
	dec.UseNumber()
	var claims MapClaims
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: unmarshal payload", ErrMalformedToken)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedToken)
	}
	return claims, nil
}
