// Package password implements password hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Hashes are self-describing: verification uses the parameters recorded in
// the stored hash, and [Argon2.NeedsUpgrade] reports when a hash should be
// regenerated under stronger current parameters.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy lives
// with the engine; storage lives with the host.
package password
