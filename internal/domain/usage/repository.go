package usage

import (
	"context"
	"time"
)

// Aggregates are the four ledger sums the quota evaluator consumes, scoped to
// one (user, subscription) pair.
type Aggregates struct {
	TotalBytes uint64
	TotalFiles uint64
	DailyBytes uint64
	DailyFiles uint64
}

// UsageRecordRepository is the persistence boundary for the download ledger.
// The ledger is append-mostly: records are inserted once and never updated.
type UsageRecordRepository interface {
	// Append inserts a new ledger entry.
	Append(ctx context.Context, record *UsageRecord) error
	// LatestForDownload returns the most recent record for (user, file),
	// further scoped by order SID when the download is tied to a paid
	// purchase. Returns nil when no record exists.
	LatestForDownload(ctx context.Context, userID, fileID uint, orderSID *string) (*UsageRecord, error)
	// GetByToken looks up the record carrying the given access token.
	// Returns nil when no record matches.
	GetByToken(ctx context.Context, token string) (*UsageRecord, error)
	// SumBytes totals byte sizes for (user, subscription) since the given
	// time; a zero time means all history.
	SumBytes(ctx context.Context, userID, subscriptionID uint, since time.Time) (uint64, error)
	// CountFiles counts ledger entries for (user, subscription) since the
	// given time; a zero time means all history.
	CountFiles(ctx context.Context, userID, subscriptionID uint, since time.Time) (uint64, error)
}
