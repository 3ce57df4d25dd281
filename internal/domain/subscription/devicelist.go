package subscription

// DeviceList is a bounded ordered collection of trusted devices. It is an
// allow-list, not a cache: entries leave only through explicit removal, never
// eviction, so the only capacity behavior is rejection at the boundary.
type DeviceList struct {
	capacity int
	devices  []*TrustedDevice
}

// NewDeviceList creates an empty list with the given capacity. A capacity of
// zero or less means the subscription admits no devices.
func NewDeviceList(capacity int) *DeviceList {
	if capacity < 0 {
		capacity = 0
	}
	return &DeviceList{capacity: capacity}
}

// ReconstructDeviceList rebuilds a list from persisted entries. Entries beyond
// capacity are kept: the invariant is enforced on append, and an admin may
// have lowered the cap after devices were trusted.
func ReconstructDeviceList(capacity int, devices []*TrustedDevice) *DeviceList {
	if capacity < 0 {
		capacity = 0
	}
	return &DeviceList{capacity: capacity, devices: devices}
}

func (l *DeviceList) Capacity() int { return l.capacity }
func (l *DeviceList) Len() int      { return len(l.devices) }

// Find returns the device with the given fingerprint, or nil.
func (l *DeviceList) Find(fingerprint string) *TrustedDevice {
	for _, d := range l.devices {
		if d.fingerprint == fingerprint {
			return d
		}
	}
	return nil
}

// HasRoom reports whether a new fingerprint could be trusted.
func (l *DeviceList) HasRoom() bool {
	return len(l.devices) < l.capacity
}

// Add appends a device. Adding an already-present fingerprint is a no-op that
// returns the existing entry. A full list rejects new fingerprints with
// ErrDeviceLimitExceeded.
func (l *DeviceList) Add(device *TrustedDevice) (*TrustedDevice, error) {
	if existing := l.Find(device.fingerprint); existing != nil {
		return existing, nil
	}
	if !l.HasRoom() {
		return nil, ErrDeviceLimitExceeded
	}
	l.devices = append(l.devices, device)
	return device, nil
}

// Remove deletes the device with the given fingerprint, preserving order.
// Returns false when the fingerprint is absent; absence is not an error.
func (l *DeviceList) Remove(fingerprint string) bool {
	for i, d := range l.devices {
		if d.fingerprint == fingerprint {
			l.devices = append(l.devices[:i], l.devices[i+1:]...)
			return true
		}
	}
	return false
}

// All returns the devices in trust order.
func (l *DeviceList) All() []*TrustedDevice {
	out := make([]*TrustedDevice, len(l.devices))
	copy(out, l.devices)
	return out
}
