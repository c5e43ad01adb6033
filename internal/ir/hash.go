package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainConfig = "lizard/config/v1"
	DomainString = "lizard/string/v1"
	DomainBucket = "lizard/bucket/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ConfigHash computes the identity of a run configuration.
// Two runs with equal canonical configurations replay the same strings on
// the same seed and therefore produce the same candidate pool.
func ConfigHash(canonical IRObject) (string, error) {
	data, err := MarshalCanonical(canonical)
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, data), nil
}

// StringID computes the identity of a grammar string within an export
// prefix. The prefix is the generation-parameter tag of the run.
func StringID(prefix string, s GrammarString) string {
	data, err := MarshalCanonical(IRObject{
		"prefix": IRString(prefix),
		"string": IRString(s),
	})
	if err != nil {
		// Only strings are involved; marshaling cannot fail.
		panic(err)
	}
	return hashWithDomain(DomainString, data)
}

// BucketID computes a fixed-length identity for a feature key.
func BucketID(featureKey string) string {
	return hashWithDomain(DomainBucket, []byte(featureKey))
}
