// Package internal contains helpers that are intentionally private to goToken,
// currently secure random token identifiers.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - stores: Redis-backed replay records for one-time tokens
//
// # What this package must NOT do
//
//   - Export types that appear in the public goToken API.
//   - Be imported by any package outside the goToken module.
package internal
