package subscription

import "context"

// SubscriptionRepository is the persistence boundary for subscriptions and
// their embedded device lists.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, subID uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)
	// GetActiveByUserID returns the user's active, unexpired subscriptions,
	// newest first.
	GetActiveByUserID(ctx context.Context, userID uint) ([]*Subscription, error)
	// SetCurrent marks one subscription current and clears the flag on the
	// user's others in the same transaction.
	SetCurrent(ctx context.Context, userID, subID uint) error
	// UpdateDevices persists the subscription's device list. Callers must hold
	// the per-subscription advisory lock across the read-modify-write.
	UpdateDevices(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
}
