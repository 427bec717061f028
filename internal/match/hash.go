package match

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Domain prefixes for content-addressed hashing.
// Version suffix enables future algorithm migration.
const (
	DomainTemplate = "kibitz/template/v1"
	DomainTrace    = "kibitz/trace/v1"
)

// HashDomain computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func HashDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashDomainUint64 computes the same domain-separated hash and folds the
// first eight bytes into a uint64. Used where a hash selects among a
// small fixed set (template variant selection) and a full digest string
// would be overkill.
func HashDomainUint64(domain string, data []byte) uint64 {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}
