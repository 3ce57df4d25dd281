package usecases

import (
	"context"
	"fmt"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/shared/keylock"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// RemoveDeviceCommand drops one device from the current subscription's
// allow-list by its fingerprint.
type RemoveDeviceCommand struct {
	UserID      uint
	Fingerprint string
}

// RemoveDeviceResult reports whether the fingerprint was actually on the
// list. Removing an absent fingerprint is not an error.
type RemoveDeviceResult struct {
	Removed     bool
	DeviceCount int
}

// RemoveDeviceUseCase revokes a trusted device, freeing a slot for another
// one. The mutation runs under the same per-subscription lock as trust
// confirmations.
type RemoveDeviceUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	currentSub       subscriptionResolver
	locks            *keylock.KeyLock
	logger           logger.Interface
}

func NewRemoveDeviceUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	currentSub subscriptionResolver,
	locks *keylock.KeyLock,
	logger logger.Interface,
) *RemoveDeviceUseCase {
	return &RemoveDeviceUseCase{
		subscriptionRepo: subscriptionRepo,
		currentSub:       currentSub,
		locks:            locks,
		logger:           logger,
	}
}

func (uc *RemoveDeviceUseCase) Execute(ctx context.Context, cmd RemoveDeviceCommand) (*RemoveDeviceResult, error) {
	sub, err := uc.currentSub.Execute(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var result *RemoveDeviceResult
	err = uc.locks.WithLock(subscription.DeviceLockKey(sub.ID()), func() error {
		fresh, err := uc.subscriptionRepo.GetByID(ctx, sub.ID())
		if err != nil {
			return fmt.Errorf("failed to reload subscription: %w", err)
		}
		if fresh == nil {
			return subscription.ErrSubscriptionNotFound
		}

		if !fresh.RemoveDevice(cmd.Fingerprint) {
			result = &RemoveDeviceResult{Removed: false, DeviceCount: fresh.Devices().Len()}
			return nil
		}

		if err := uc.subscriptionRepo.UpdateDevices(ctx, fresh); err != nil {
			return fmt.Errorf("failed to persist device list: %w", err)
		}

		result = &RemoveDeviceResult{Removed: true, DeviceCount: fresh.Devices().Len()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Removed {
		uc.logger.Infow("device removed",
			"user_id", cmd.UserID,
			"subscription_id", sub.ID(),
			"device_count", result.DeviceCount,
		)
	}

	return result, nil
}
