// Package jwt holds the low-level token codec: segment encoding for the header and payload,
// and keyed-hash dispatch for the signature segment.
//
// # Architecture boundaries
//
// This package knows nothing about claims, lifetimes, or replay. It turns bytes into segments,
// computes hex HMAC signatures over "<header>.<payload>", and verifies them in constant time.
// Claim assembly and time checks live in goToken.
//
// # What this package must NOT do
//
//   - Read the clock or generate identifiers.
//   - Import goToken or any sibling package.
//   - Accept algorithms outside the HMAC family.
package jwt
