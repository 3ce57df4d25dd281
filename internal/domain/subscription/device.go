package subscription

import (
	"errors"
	"time"
)

// TrustedDevice is one entry in a subscription's bounded device allow-list.
// The fingerprint is derived from client signals, never random, so the same
// physical device maps to the same entry across sessions.
type TrustedDevice struct {
	fingerprint string
	displayName string
	platform    string
	ipAddress   string
	userAgent   string
	trustedAt   time.Time
	lastUsedAt  time.Time
}

// NewTrustedDevice creates a device entry at trust-confirmation time.
func NewTrustedDevice(fingerprint, displayName, platform, ipAddress, userAgent string) (*TrustedDevice, error) {
	if fingerprint == "" {
		return nil, errors.New("device fingerprint cannot be empty")
	}
	if displayName == "" {
		displayName = "Unknown device"
	}

	now := time.Now().UTC()
	return &TrustedDevice{
		fingerprint: fingerprint,
		displayName: displayName,
		platform:    platform,
		ipAddress:   ipAddress,
		userAgent:   userAgent,
		trustedAt:   now,
		lastUsedAt:  now,
	}, nil
}

// ReconstructTrustedDevice rebuilds a device entry from persistence.
func ReconstructTrustedDevice(fingerprint, displayName, platform, ipAddress, userAgent string, trustedAt, lastUsedAt time.Time) (*TrustedDevice, error) {
	if fingerprint == "" {
		return nil, errors.New("device fingerprint cannot be empty")
	}
	return &TrustedDevice{
		fingerprint: fingerprint,
		displayName: displayName,
		platform:    platform,
		ipAddress:   ipAddress,
		userAgent:   userAgent,
		trustedAt:   trustedAt,
		lastUsedAt:  lastUsedAt,
	}, nil
}

func (d *TrustedDevice) Fingerprint() string   { return d.fingerprint }
func (d *TrustedDevice) DisplayName() string   { return d.displayName }
func (d *TrustedDevice) Platform() string      { return d.platform }
func (d *TrustedDevice) IPAddress() string     { return d.ipAddress }
func (d *TrustedDevice) UserAgent() string     { return d.userAgent }
func (d *TrustedDevice) TrustedAt() time.Time  { return d.trustedAt }
func (d *TrustedDevice) LastUsedAt() time.Time { return d.lastUsedAt }

// Touch records a use of the device, updating the last-used timestamp and the
// requesting IP. Never fails.
func (d *TrustedDevice) Touch(ipAddress string) {
	d.lastUsedAt = time.Now().UTC()
	if ipAddress != "" {
		d.ipAddress = ipAddress
	}
}
