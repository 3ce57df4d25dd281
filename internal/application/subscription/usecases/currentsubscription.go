// Package usecases provides application-level use cases for subscription
// state.
package usecases

import (
	"context"
	"fmt"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// CurrentSubscriptionUseCase resolves which of a user's subscriptions gates
// downloads right now. When none carries the is-current flag, the newest
// usable one is promoted and persisted, keeping the at-most-one-current
// invariant.
type CurrentSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	logger           logger.Interface
}

func NewCurrentSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	logger logger.Interface,
) *CurrentSubscriptionUseCase {
	return &CurrentSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// Execute returns the user's current subscription, or
// subscription.ErrNoCurrentSubscription when the user holds no usable one.
func (uc *CurrentSubscriptionUseCase) Execute(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	subs, err := uc.subscriptionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to load active subscriptions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load active subscriptions: %w", err)
	}

	var newest *subscription.Subscription
	for _, sub := range subs {
		if !sub.IsUsable() {
			continue
		}
		if sub.IsCurrent() {
			return sub, nil
		}
		if newest == nil {
			newest = sub
		}
	}

	if newest == nil {
		return nil, subscription.ErrNoCurrentSubscription
	}

	// No subscription was current; promote the newest usable one.
	if err := newest.MarkCurrent(); err != nil {
		return nil, fmt.Errorf("failed to mark subscription current: %w", err)
	}
	if err := uc.subscriptionRepo.SetCurrent(ctx, userID, newest.ID()); err != nil {
		uc.logger.Errorw("failed to persist current subscription",
			"user_id", userID,
			"subscription_id", newest.ID(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to persist current subscription: %w", err)
	}

	uc.logger.Infow("promoted subscription to current",
		"user_id", userID,
		"subscription_id", newest.ID(),
	)

	return newest, nil
}
