package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/domain/usage"
	"github.com/filemart-io/filemart/internal/shared/biztime"
	"github.com/filemart-io/filemart/internal/shared/goroutine"
	"github.com/filemart-io/filemart/internal/shared/keylock"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// DefaultTokenValidity is the token lifetime when none is configured.
const DefaultTokenValidity = 24 * time.Hour

// IssueTokenCommand requests a download token for one (user, file) pair.
type IssueTokenCommand struct {
	UserID         uint
	File           *catalog.File
	SubscriptionID *uint
	OrderSID       *string
	// PreInsertCheck runs inside the per-download advisory lock, after the
	// reuse probe and immediately before the ledger insert. Quota
	// re-validation hooks in here so the read-then-decide window is closed
	// within the same critical section that appends the record.
	PreInsertCheck func(ctx context.Context) error
}

// IssueTokenResult carries the live token and whether it was reused.
type IssueTokenResult struct {
	Record *usage.UsageRecord
	Reused bool
}

// IssueTokenUseCase mints time-limited download tokens with idempotent
// re-issuance: a second request for the same (user, file) pair before the
// prior token expires returns that token unchanged and appends nothing to the
// ledger.
type IssueTokenUseCase struct {
	usageRepo usage.UsageRecordRepository
	fileRepo  catalog.FileRepository
	notifier  Notifier
	cache     CacheInvalidator
	locks     *keylock.KeyLock
	validity  time.Duration
	logger    logger.Interface
}

func NewIssueTokenUseCase(
	usageRepo usage.UsageRecordRepository,
	fileRepo catalog.FileRepository,
	notifier Notifier,
	cache CacheInvalidator,
	locks *keylock.KeyLock,
	validity time.Duration,
	logger logger.Interface,
) *IssueTokenUseCase {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	return &IssueTokenUseCase{
		usageRepo: usageRepo,
		fileRepo:  fileRepo,
		notifier:  notifier,
		cache:     cache,
		locks:     locks,
		validity:  validity,
		logger:    logger,
	}
}

func (uc *IssueTokenUseCase) Execute(ctx context.Context, cmd IssueTokenCommand) (*IssueTokenResult, error) {
	if cmd.File == nil {
		return nil, fmt.Errorf("file is required")
	}

	// Serialize the check-then-insert sequence per (user, file, order) so
	// concurrent duplicates cannot both miss the reuse probe and both insert.
	key := downloadLockKey(cmd.UserID, cmd.File.ID(), cmd.OrderSID)

	var result *IssueTokenResult
	err := uc.locks.WithLock(key, func() error {
		prior, err := uc.usageRepo.LatestForDownload(ctx, cmd.UserID, cmd.File.ID(), cmd.OrderSID)
		if err != nil {
			return fmt.Errorf("failed to look up prior usage record: %w", err)
		}

		if prior != nil && prior.IsLive(biztime.NowUTC()) {
			uc.logger.Debugw("reusing live download token",
				"user_id", cmd.UserID,
				"file_id", cmd.File.ID(),
				"usage_sid", prior.SID(),
			)
			result = &IssueTokenResult{Record: prior, Reused: true}
			return nil
		}

		if cmd.PreInsertCheck != nil {
			if err := cmd.PreInsertCheck(ctx); err != nil {
				return err
			}
		}

		// Snapshot the file's current byte size; later file edits must not
		// rewrite quota history.
		record, err := usage.NewUsageRecord(
			cmd.UserID,
			cmd.File.ID(),
			cmd.SubscriptionID,
			cmd.OrderSID,
			cmd.File.ByteSize(),
			uc.validity,
		)
		if err != nil {
			return fmt.Errorf("failed to build usage record: %w", err)
		}

		if err := uc.usageRepo.Append(ctx, record); err != nil {
			return fmt.Errorf("failed to append usage record: %w", err)
		}

		result = &IssueTokenResult{Record: record, Reused: false}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Reused {
		uc.recordSideEffects(cmd.UserID, cmd.File)
	}

	return result, nil
}

// recordSideEffects performs the best-effort follow-ups to a fresh issuance.
// None of them may fail the grant, so they run detached with panic recovery.
func (uc *IssueTokenUseCase) recordSideEffects(userID uint, file *catalog.File) {
	fileID := file.ID()
	fileSID := file.SID()
	title := file.Title()

	goroutine.SafeGo(uc.logger, "download-side-effects", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := uc.fileRepo.IncrementDownloadCount(ctx, fileID); err != nil {
			uc.logger.Warnw("failed to increment download counter", "file_id", fileID, "error", err)
		}

		if err := uc.cache.Invalidate(ctx, "catalog:file:"+fileSID+"*"); err != nil {
			uc.logger.Warnw("failed to invalidate catalog cache", "file_sid", fileSID, "error", err)
		}

		if err := uc.notifier.NotifyFileDownloaded(ctx, userID, title); err != nil {
			uc.logger.Warnw("failed to send download notification", "user_id", userID, "error", err)
		}
	})
}

func downloadLockKey(userID, fileID uint, orderSID *string) string {
	key := fmt.Sprintf("download:%d:%d", userID, fileID)
	if orderSID != nil {
		key += ":" + *orderSID
	}
	return key
}
