package subscription

import (
	"errors"
	"fmt"
	"time"

	"github.com/filemart-io/filemart/internal/shared/id"
)

// Subscription is a user's entitlement bundle: consumption caps, the trusted
// device allow-list, and the is-current marker. A user may hold several
// subscriptions over time; at most one non-expired active subscription is
// current at any moment.
//
// A cap value of 0 means unlimited on that dimension. This convention is
// load-bearing for the quota evaluator and must not be normalized away.
type Subscription struct {
	id                uint
	sid               string
	userID            uint
	packageID         uint
	lifetimeBandwidth uint64
	lifetimeFiles     uint64
	dailyBandwidth    uint64
	dailyFiles        uint64
	maxDevices        int
	active            bool
	current           bool
	expiresAt         time.Time
	devices           *DeviceList
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

// Caps groups the four consumption limits for the quota evaluator.
type Caps struct {
	LifetimeBandwidth uint64
	LifetimeFiles     uint64
	DailyBandwidth    uint64
	DailyFiles        uint64
}

// NewSubscription creates a subscription at purchase time.
func NewSubscription(userID, packageID uint, caps Caps, maxDevices int, expiresAt time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, errors.New("user ID is required")
	}
	if packageID == 0 {
		return nil, errors.New("package ID is required")
	}
	if maxDevices < 0 {
		return nil, errors.New("max devices cannot be negative")
	}

	now := time.Now().UTC()
	return &Subscription{
		sid:               id.MustGenerateWithPrefix(id.PrefixSubscription, id.DefaultLength),
		userID:            userID,
		packageID:         packageID,
		lifetimeBandwidth: caps.LifetimeBandwidth,
		lifetimeFiles:     caps.LifetimeFiles,
		dailyBandwidth:    caps.DailyBandwidth,
		dailyFiles:        caps.DailyFiles,
		maxDevices:        maxDevices,
		active:            true,
		expiresAt:         expiresAt,
		devices:           NewDeviceList(maxDevices),
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// SubscriptionReconstructParams carries persisted state back into the domain.
type SubscriptionReconstructParams struct {
	ID                uint
	SID               string
	UserID            uint
	PackageID         uint
	LifetimeBandwidth uint64
	LifetimeFiles     uint64
	DailyBandwidth    uint64
	DailyFiles        uint64
	MaxDevices        int
	Active            bool
	Current           bool
	ExpiresAt         time.Time
	Devices           []*TrustedDevice
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReconstructSubscription rebuilds a Subscription from persistence.
func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, errors.New("subscription ID cannot be zero")
	}
	if p.UserID == 0 {
		return nil, errors.New("user ID is required")
	}

	return &Subscription{
		id:                p.ID,
		sid:               p.SID,
		userID:            p.UserID,
		packageID:         p.PackageID,
		lifetimeBandwidth: p.LifetimeBandwidth,
		lifetimeFiles:     p.LifetimeFiles,
		dailyBandwidth:    p.DailyBandwidth,
		dailyFiles:        p.DailyFiles,
		maxDevices:        p.MaxDevices,
		active:            p.Active,
		current:           p.Current,
		expiresAt:         p.ExpiresAt,
		devices:           ReconstructDeviceList(p.MaxDevices, p.Devices),
		version:           p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint             { return s.id }
func (s *Subscription) SID() string          { return s.sid }
func (s *Subscription) UserID() uint         { return s.userID }
func (s *Subscription) PackageID() uint      { return s.packageID }
func (s *Subscription) MaxDevices() int      { return s.maxDevices }
func (s *Subscription) IsActive() bool       { return s.active }
func (s *Subscription) IsCurrent() bool      { return s.current }
func (s *Subscription) ExpiresAt() time.Time { return s.expiresAt }
func (s *Subscription) Version() int         { return s.version }
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }

// Caps returns the consumption limits for the quota evaluator.
func (s *Subscription) Caps() Caps {
	return Caps{
		LifetimeBandwidth: s.lifetimeBandwidth,
		LifetimeFiles:     s.lifetimeFiles,
		DailyBandwidth:    s.dailyBandwidth,
		DailyFiles:        s.dailyFiles,
	}
}

// SetID sets the subscription ID (only for persistence layer use).
func (s *Subscription) SetID(subID uint) error {
	if s.id != 0 {
		return errors.New("subscription ID is already set")
	}
	if subID == 0 {
		return errors.New("subscription ID cannot be zero")
	}
	s.id = subID
	return nil
}

// IsExpired checks the expiry timestamp against the current time.
func (s *Subscription) IsExpired() bool {
	return !s.expiresAt.IsZero() && time.Now().UTC().After(s.expiresAt)
}

// IsUsable reports whether the subscription can gate downloads right now.
func (s *Subscription) IsUsable() bool {
	return s.active && !s.IsExpired()
}

// MarkCurrent flips the is-current flag. The caller is responsible for
// clearing the flag on the user's other subscriptions first.
func (s *Subscription) MarkCurrent() error {
	if !s.IsUsable() {
		return ErrSubscriptionInactive
	}
	if s.current {
		return nil
	}
	s.current = true
	s.touch()
	return nil
}

// ClearCurrent removes the is-current flag.
func (s *Subscription) ClearCurrent() {
	if !s.current {
		return
	}
	s.current = false
	s.touch()
}

// Devices exposes the trusted device allow-list.
func (s *Subscription) Devices() *DeviceList {
	return s.devices
}

// DeviceLockKey names the advisory lock serializing writes to one
// subscription's device list. Every read-modify-write of the list, whatever
// the use case, must hold this key.
func DeviceLockKey(subscriptionID uint) string {
	return fmt.Sprintf("subscription:%d:devices", subscriptionID)
}

// IsTrustedDevice scans the device list for the fingerprint.
func (s *Subscription) IsTrustedDevice(fingerprint string) (bool, *TrustedDevice) {
	d := s.devices.Find(fingerprint)
	return d != nil, d
}

// TrustDevice appends a device to the allow-list. Returns the existing entry
// unchanged when the fingerprint is already trusted; fails with
// ErrDeviceLimitExceeded when the list is full and the fingerprint is new.
func (s *Subscription) TrustDevice(device *TrustedDevice) (*TrustedDevice, error) {
	if !s.IsUsable() {
		return nil, ErrSubscriptionInactive
	}
	added, err := s.devices.Add(device)
	if err != nil {
		return nil, err
	}
	s.touch()
	return added, nil
}

// TouchDevice updates last-used metadata on an already-trusted device. A
// miss is silently ignored; touching never fails.
func (s *Subscription) TouchDevice(fingerprint, ipAddress string) {
	if d := s.devices.Find(fingerprint); d != nil {
		d.Touch(ipAddress)
		s.touch()
	}
}

// RemoveDevice drops a device from the allow-list. Returns false when the
// fingerprint is not present.
func (s *Subscription) RemoveDevice(fingerprint string) bool {
	removed := s.devices.Remove(fingerprint)
	if removed {
		s.touch()
	}
	return removed
}

func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	s.version++
}
