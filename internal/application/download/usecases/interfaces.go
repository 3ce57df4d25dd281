// Package usecases implements the download entitlement engine's request
// flows: token issuance with idempotent reuse, redemption, and the
// request-level orchestration across file, device, and quota checks.
package usecases

import "context"

// Notifier is the fire-and-forget event sink. Implementations must be safe to
// call concurrently; failures are logged by callers and never fail the
// primary operation.
type Notifier interface {
	NotifyFileDownloaded(ctx context.Context, userID uint, fileTitle string) error
	NotifyDeviceTrusted(ctx context.Context, userID uint, deviceName string) error
}

// CacheInvalidator clears cached read models matching a key pattern after a
// write. The engine depends on this capability, not on a concrete cache
// client.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}
