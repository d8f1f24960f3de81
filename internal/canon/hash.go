package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRecord is the domain prefix for record fingerprints.
// Version suffix enables future algorithm migration.
const DomainRecord = "converge/record/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a record payload:
// the hex SHA-256 of its canonical JSON under DomainRecord.
//
// Two payloads receive the same fingerprint exactly when their canonical
// JSON forms coincide, so the fingerprint is stable across map iteration
// order, key ordering in the source document, and process restarts.
// Reconciliation uses the lexicographic order of fingerprints as its total
// order over same-key remote records.
func Fingerprint(v any) (string, error) {
	canonical, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(v any) string {
	fp, err := Fingerprint(v)
	if err != nil {
		panic(err)
	}
	return fp
}
