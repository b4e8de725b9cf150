// Package checksum computes a content digest of emitted fuzzer source, used
// to detect when a re-run of the compiler over an unchanged grammar would
// produce byte-identical output (spec.md §8's determinism property) without
// re-diffing the full text. Repurposes golang.org/x/crypto/blake2b, a
// teacher transitive dependency the game server used for its own (bcrypt)
// password hashing, for a different cryptographic-hash concern here.
package checksum

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Of returns the hex-encoded BLAKE2b-256 digest of src.
func Of(src string) string {
	sum := blake2b.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
