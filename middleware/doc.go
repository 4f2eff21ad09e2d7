// Package middleware exposes HTTP middleware built on goToken.Engine verification.
//
// # Guards
//
//   - [Guard] verifies the bearer token.
//   - [RequireOneTime] additionally requires a jti, so a replay-protected engine accepts
//     each token once.
//
// Each guard reads the Authorization header, calls Engine.Verify, and stores the verified
// token in the request context for [TokenFromContext].
//
// This package translates HTTP semantics into Engine calls. It does not parse tokens or
// talk to Redis itself.
package middleware
