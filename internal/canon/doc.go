// Package canon produces canonical JSON and content-addressed fingerprints
// for reconciliation records.
//
// Canonical form follows RFC 8785: object keys sorted by UTF-16 code units,
// strings NFC-normalized, no HTML escaping. Fingerprints are SHA-256 over the
// canonical bytes with a domain-separation prefix, so the same payload always
// hashes to the same value regardless of how the caller ordered map keys or
// slice-of-record inputs.
//
// canon imports nothing internal; every other package may import it.
package canon
