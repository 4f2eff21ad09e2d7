// Package stores provides Redis-backed, short-lived records for one-time token identifiers.
//
// # Design
//
// A jti is recorded with SET NX and a TTL that reaches the token's expiry. The first writer
// wins; every later attempt observes the existing key and is reported as a replay. Records
// expire on their own, so the keyspace never outgrows the set of live tokens.
//
// # What this package must NOT do
//
//   - Import goToken or any sibling internal package.
//   - Decide whether a token is valid; callers verify signatures and time windows first.
package stores
