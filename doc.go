// Package goToken issues and verifies self-contained HMAC-signed tokens for two lifetimes: a
// short-lived access token and a longer-lived refresh token.
//
// A token has three dot-separated segments: base64(header), base64(payload) and the hex
// keyed hash of "<header>.<payload>". The header is {"typ":"JWT","alg":<algorithm>}; the
// payload is the caller's custom claims overlaid with the standard claims iat, exp, iss, sub,
// aud, nbf and jti.
//
// # Building tokens
//
// [Key] pairs a secret with one of HS256, HS384 or HS512 and is validated once. [TokenBuilder]
// is an immutable value: every With method returns a copy, so one configured builder may be
// shared and signed from concurrently.
//
//	key, err := goToken.NewKey("s3cr3t", "HS256")
//	tb := goToken.NewTokenBuilder().WithIssuer("svc-a").WithSubject("user-42")
//	access, err := tb.Sign(goToken.MapClaims{"role": "admin"}, key)
//	refresh, err := tb.Sign(nil, key, goToken.Refresh())
//
// # Engine
//
// [Engine] wraps a configured key, builder defaults, a [Verifier], optional Redis-backed replay
// protection for one-time (jti) tokens, metrics and audit dispatch. Build it with [New].
//
// # What this package must NOT do
//
//   - Sign with asymmetric algorithms or look up keys by ID.
//   - Keep revocation lists; replay tracking covers jti-bearing tokens only.
//   - Validate custom claim schemas.
package goToken
