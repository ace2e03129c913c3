package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain separates hashes of different kinds of content. The version suffix
// changes whenever the encoded shape does.
type Domain string

const (
	DomainPredicate Domain = "sieve/predicate/v1"
	DomainQuery     Domain = "sieve/query/v1"
)

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)). The zero byte
// keeps ("ab", "c") and ("a", "bc") apart.
func hashWithDomain(d Domain, data []byte) string {
	h := sha256.New()
	h.Write([]byte(d))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes the canonical JSON of v under domain d. Values with the
// same canonical form (IRInt(16) and IRFloat(16), reordered object keys) hash
// the same.
func ContentHash(d Domain, v IRValue) (string, error) {
	canonical, err := marshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return hashWithDomain(d, canonical), nil
}
