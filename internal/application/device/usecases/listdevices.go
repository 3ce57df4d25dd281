package usecases

import (
	"context"
	"time"

	"github.com/filemart-io/filemart/internal/domain/entitlement"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// ListDevicesCommand lists the current subscription's trusted devices.
// Signals identify the requesting device so it can be flagged in the output.
type ListDevicesCommand struct {
	UserID  uint
	Signals entitlement.DeviceSignals
}

// DeviceInfo is one trusted device as shown to the user. Fingerprints are
// opaque identifiers; they carry no recoverable device data.
type DeviceInfo struct {
	Fingerprint     string
	DisplayName     string
	Platform        string
	IPAddress       string
	TrustedAt       time.Time
	LastUsedAt      time.Time
	IsCurrentDevice bool
}

// ListDevicesResult is the device list plus capacity information.
type ListDevicesResult struct {
	Devices    []DeviceInfo
	MaxDevices int
}

// ListDevicesUseCase returns the allow-list of the user's current
// subscription, marking the entry matching the requesting device.
type ListDevicesUseCase struct {
	currentSub subscriptionResolver
	logger     logger.Interface
}

func NewListDevicesUseCase(currentSub subscriptionResolver, logger logger.Interface) *ListDevicesUseCase {
	return &ListDevicesUseCase{currentSub: currentSub, logger: logger}
}

func (uc *ListDevicesUseCase) Execute(ctx context.Context, cmd ListDevicesCommand) (*ListDevicesResult, error) {
	sub, err := uc.currentSub.Execute(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	requesting := entitlement.DeriveFingerprint(cmd.Signals)

	all := sub.Devices().All()
	devices := make([]DeviceInfo, 0, len(all))
	for _, d := range all {
		devices = append(devices, DeviceInfo{
			Fingerprint:     d.Fingerprint(),
			DisplayName:     d.DisplayName(),
			Platform:        d.Platform(),
			IPAddress:       d.IPAddress(),
			TrustedAt:       d.TrustedAt(),
			LastUsedAt:      d.LastUsedAt(),
			IsCurrentDevice: d.Fingerprint() == requesting,
		})
	}

	return &ListDevicesResult{
		Devices:    devices,
		MaxDevices: sub.MaxDevices(),
	}, nil
}
