package subscription

import "errors"

var (
	ErrDeviceLimitExceeded   = errors.New("trusted device limit exceeded")
	ErrSubscriptionExpired   = errors.New("subscription has expired")
	ErrSubscriptionInactive  = errors.New("subscription is not active")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrNoCurrentSubscription = errors.New("user has no current subscription")
)
