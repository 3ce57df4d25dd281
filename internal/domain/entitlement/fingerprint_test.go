package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullSignals() DeviceSignals {
	return DeviceSignals{
		Platform:       "Windows",
		Architecture:   "x86",
		Mobile:         "?0",
		AcceptLanguage: "en-US,en;q=0.9",
		Model:          "",
		Brand:          "Chromium",
	}
}

func TestDeriveFingerprint_Deterministic(t *testing.T) {
	a := DeriveFingerprint(fullSignals())
	b := DeriveFingerprint(fullSignals())

	assert.Equal(t, a, b)
	assert.Len(t, a, FingerprintLength)
}

func TestDeriveFingerprint_EmptySignals(t *testing.T) {
	fp := DeriveFingerprint(DeviceSignals{})

	assert.Len(t, fp, FingerprintLength, "missing signals degrade to empty strings, never error")
}

func TestDeriveFingerprint_SingleSignalChangesOutput(t *testing.T) {
	base := DeriveFingerprint(fullSignals())

	variants := []DeviceSignals{}

	s := fullSignals()
	s.Platform = "macOS"
	variants = append(variants, s)

	s = fullSignals()
	s.Architecture = "arm"
	variants = append(variants, s)

	s = fullSignals()
	s.Mobile = "?1"
	variants = append(variants, s)

	s = fullSignals()
	s.AcceptLanguage = "de-DE"
	variants = append(variants, s)

	s = fullSignals()
	s.Model = "Pixel 8"
	variants = append(variants, s)

	s = fullSignals()
	s.Brand = "Firefox"
	variants = append(variants, s)

	for i, v := range variants {
		assert.NotEqual(t, base, DeriveFingerprint(v), "variant %d should change the fingerprint", i)
	}
}

func TestDeriveFingerprint_NormalizesCaseAndWhitespace(t *testing.T) {
	a := DeriveFingerprint(DeviceSignals{Platform: "Windows"})
	b := DeriveFingerprint(DeviceSignals{Platform: "  windows "})

	assert.Equal(t, a, b, "same device reporting cosmetic differences should map to the same fingerprint")
}

func TestDeriveFingerprint_SignalOrderMatters(t *testing.T) {
	// Platform and brand carry the same value but sit in different pipeline
	// positions, so they must not collide.
	a := DeriveFingerprint(DeviceSignals{Platform: "linux"})
	b := DeriveFingerprint(DeviceSignals{Brand: "linux"})

	assert.NotEqual(t, a, b)
}
