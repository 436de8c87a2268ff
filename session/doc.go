// Package session implements redis-backed sessions with JWT bearer tokens.
//
// A session is a server-side record keyed by a random ID. The token handed
// to clients is an HS256 JWT carrying the session ID; resolving a token
// always goes back to redis, so revocation is immediate.
//
// # Architecture boundaries
//
// This package owns session persistence, token signing, and cookie
// plumbing. It knows nothing about how users authenticate.
//
// # What this package must NOT do
//
//   - Store user credentials or profile data beyond the user ID.
//   - Import the root engine package.
package session
