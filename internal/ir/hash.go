package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for memento hashing.
// The version suffix allows the algorithm to change without collisions.
const (
	DomainValue        = "memento/value/v1"
	DomainLookup       = "memento/lookup/v1"
	DomainSerializable = "memento/serializable/v1"
	DomainEmpty        = "memento/empty/v1"
	DomainCollection   = "memento/collection/v1"
	DomainFeature      = "memento/feature/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte keeps the
// domain/data boundary unambiguous.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ValueHash hashes a value decomposition together with its logical type.
// Equal decompositions of the same type always hash equally.
func ValueHash(logicalType string, decomposition IRObject) (string, error) {
	canonical, err := MarshalCanonical(IRObject{
		"type":    IRString(logicalType),
		"payload": decomposition,
	})
	if err != nil {
		return "", fmt.Errorf("ValueHash: failed to marshal: %w", err)
	}
	return HashWithDomain(DomainValue, canonical), nil
}

// MustValueHash is like ValueHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustValueHash(logicalType string, decomposition IRObject) string {
	h, err := ValueHash(logicalType, decomposition)
	if err != nil {
		panic(err)
	}
	return h
}
