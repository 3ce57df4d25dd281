// Package usecases implements device trust management: confirming a new
// device, listing trusted devices, and revoking one.
package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/filemart-io/filemart/internal/domain/entitlement"
	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/shared/goroutine"
	"github.com/filemart-io/filemart/internal/shared/keylock"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// TrustStatus is the outcome class of a trust request.
type TrustStatus string

const (
	// TrustAdded means the device joined the allow-list.
	TrustAdded TrustStatus = "trusted"
	// TrustAlreadyTrusted means the fingerprint was already on the list; the
	// existing entry is returned unchanged.
	TrustAlreadyTrusted TrustStatus = "already_trusted"
	// TrustLimitExceeded means the list is full and the fingerprint is new.
	TrustLimitExceeded TrustStatus = "limit_exceeded"
)

// Notifier sends fire-and-forget device events.
type Notifier interface {
	NotifyDeviceTrusted(ctx context.Context, userID uint, deviceName string) error
}

// TrustDeviceCommand confirms the requesting device for a subscription.
type TrustDeviceCommand struct {
	UserID      uint
	Signals     entitlement.DeviceSignals
	DisplayName string
	IPAddress   string
	UserAgent   string
}

// TrustDeviceResult reports what happened and the resulting list state.
type TrustDeviceResult struct {
	Status      TrustStatus
	Fingerprint string
	DeviceCount int
	MaxDevices  int
}

// TrustDeviceUseCase adds the requesting device to the current subscription's
// allow-list. The read-modify-write on the device list runs under a
// per-subscription advisory lock so two concurrent confirmations cannot both
// see room and overshoot the cap.
type TrustDeviceUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	currentSub       subscriptionResolver
	notifier         Notifier
	locks            *keylock.KeyLock
	logger           logger.Interface
}

// subscriptionResolver narrows the current-subscription use case for testing.
type subscriptionResolver interface {
	Execute(ctx context.Context, userID uint) (*subscription.Subscription, error)
}

func NewTrustDeviceUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	currentSub subscriptionResolver,
	notifier Notifier,
	locks *keylock.KeyLock,
	logger logger.Interface,
) *TrustDeviceUseCase {
	return &TrustDeviceUseCase{
		subscriptionRepo: subscriptionRepo,
		currentSub:       currentSub,
		notifier:         notifier,
		locks:            locks,
		logger:           logger,
	}
}

func (uc *TrustDeviceUseCase) Execute(ctx context.Context, cmd TrustDeviceCommand) (*TrustDeviceResult, error) {
	sub, err := uc.currentSub.Execute(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	fingerprint := entitlement.DeriveFingerprint(cmd.Signals)

	var result *TrustDeviceResult
	err = uc.locks.WithLock(subscription.DeviceLockKey(sub.ID()), func() error {
		// Reload inside the lock; the list may have changed since the
		// resolver fetched the subscription.
		fresh, err := uc.subscriptionRepo.GetByID(ctx, sub.ID())
		if err != nil {
			return fmt.Errorf("failed to reload subscription: %w", err)
		}
		if fresh == nil {
			return subscription.ErrSubscriptionNotFound
		}

		if trusted, _ := fresh.IsTrustedDevice(fingerprint); trusted {
			result = &TrustDeviceResult{
				Status:      TrustAlreadyTrusted,
				Fingerprint: fingerprint,
				DeviceCount: fresh.Devices().Len(),
				MaxDevices:  fresh.MaxDevices(),
			}
			return nil
		}

		device, err := subscription.NewTrustedDevice(
			fingerprint, cmd.DisplayName, cmd.Signals.Platform, cmd.IPAddress, cmd.UserAgent,
		)
		if err != nil {
			return fmt.Errorf("failed to build trusted device: %w", err)
		}

		if _, err := fresh.TrustDevice(device); err != nil {
			if err == subscription.ErrDeviceLimitExceeded {
				result = &TrustDeviceResult{
					Status:      TrustLimitExceeded,
					Fingerprint: fingerprint,
					DeviceCount: fresh.Devices().Len(),
					MaxDevices:  fresh.MaxDevices(),
				}
				return nil
			}
			return err
		}

		if err := uc.subscriptionRepo.UpdateDevices(ctx, fresh); err != nil {
			return fmt.Errorf("failed to persist device list: %w", err)
		}

		result = &TrustDeviceResult{
			Status:      TrustAdded,
			Fingerprint: fingerprint,
			DeviceCount: fresh.Devices().Len(),
			MaxDevices:  fresh.MaxDevices(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == TrustAdded {
		uc.logger.Infow("device trusted",
			"user_id", cmd.UserID,
			"subscription_id", sub.ID(),
			"device_count", result.DeviceCount,
		)

		userID := cmd.UserID
		name := cmd.DisplayName
		goroutine.SafeGo(uc.logger, "device-trusted-notification", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := uc.notifier.NotifyDeviceTrusted(ctx, userID, name); err != nil {
				uc.logger.Warnw("failed to send device trusted notification", "user_id", userID, "error", err)
			}
		})
	}

	return result, nil
}
