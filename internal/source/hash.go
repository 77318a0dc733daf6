package source

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash is a stable digest of a source unit's text, used as the cache
// freshness key.
type ContentHash [32]byte

// HashContent digests the given text.
func HashContent(text string) ContentHash {
	return sha256.Sum256([]byte(text))
}

func (h ContentHash) String() string {
	return hex.EncodeToString(h[:8])
}

// IsZero reports whether the hash is the zero value.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}
