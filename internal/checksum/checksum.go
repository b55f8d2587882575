// Package checksum computes the content digests used for optimistic
// concurrency and library change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Project returns the digest of a project's name and encoded timeline. A nil
// timeline hashes the name alone.
func Project(name string, timeline []byte) string {
	h := sha256.New()
	h.Write([]byte(name))
	if timeline != nil {
		h.Write([]byte{0})
		h.Write(timeline)
	}
	return hex.EncodeToString(h.Sum(nil))
}
