// Package primitives provides the deterministic building blocks shared by the
// kernel and the offline tooling: SHA-256 hashing, ID minting, and stable
// sorting. Everything in this package except the random ID minters (NewUUID,
// RandomID and the New*ID helpers) is a pure function of its inputs.
package primitives

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashBytes hashes data with SHA-256 and returns the lowercase hex digest.
// SHA-256 is the only hash algorithm used for content addressing.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashString hashes the UTF-8 bytes of s with SHA-256.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// HashCanonicalJSON hashes an already-canonicalized JSON document.
// The caller must canonicalize first; hashing non-canonical JSON produces
// digests that differ across logically equal documents.
func HashCanonicalJSON(canonical string) string {
	return HashString(canonical)
}

// VerifyHash reports whether the SHA-256 digest of data equals expected.
// The comparison is constant-time.
func VerifyHash(data []byte, expected string) bool {
	return ConstantTimeEqual(HashBytes(data), expected)
}

// ConstantTimeEqual compares two strings without leaking the position of the
// first mismatch. Length inequality returns false immediately; length is not
// considered secret.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
