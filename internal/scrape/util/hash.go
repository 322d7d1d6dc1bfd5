package util

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString returns a stable hex digest of s. Used for identity keys when
// a posting has no apply URL.
func HashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
