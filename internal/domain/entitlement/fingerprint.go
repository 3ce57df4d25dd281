// Package entitlement holds the pure decision logic of the download engine:
// fingerprint derivation and quota evaluation. Nothing here touches storage
// or the network.
package entitlement

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintLength is the hex length of a derived fingerprint (128 bits of
// the SHA-256 digest).
const FingerprintLength = 32

// DeviceSignals is the bag of client-supplied hints a fingerprint is derived
// from. Every field is optional; a missing signal contributes an empty string
// and never causes an error. Volatile values (timestamps, nonces) must never
// be added here: repeatability across sessions is the whole point.
type DeviceSignals struct {
	Platform       string
	Architecture   string
	Mobile         string
	AcceptLanguage string
	Model          string
	Brand          string
}

// signalExtractor produces one normalized signal from the bag. Extractors are
// total: any input yields a string, possibly empty.
type signalExtractor func(DeviceSignals) string

// extractors is the ordered pipeline the digest is computed over. Order is
// part of the fingerprint format; changing it invalidates every stored
// fingerprint.
var extractors = []signalExtractor{
	func(s DeviceSignals) string { return normalize(s.Platform) },
	func(s DeviceSignals) string { return normalize(s.Architecture) },
	func(s DeviceSignals) string { return normalize(s.Mobile) },
	func(s DeviceSignals) string { return normalize(s.AcceptLanguage) },
	func(s DeviceSignals) string { return normalize(s.Model) },
	func(s DeviceSignals) string { return normalize(s.Brand) },
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// DeriveFingerprint turns a signal bag into a stable opaque identifier.
// Identical bags always yield identical fingerprints.
func DeriveFingerprint(signals DeviceSignals) string {
	parts := make([]string, len(extractors))
	for i, extract := range extractors {
		parts[i] = extract(signals)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}
