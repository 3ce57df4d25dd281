package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/domain/entitlement"
	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/domain/usage"
	"github.com/filemart-io/filemart/internal/shared/biztime"
	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/keylock"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// DownloadStatus is the outcome class of a download request.
type DownloadStatus string

const (
	// DownloadGranted means a token was issued (or a live one reused).
	DownloadGranted DownloadStatus = "granted"
	// DownloadNeedsConfirmation means the requesting device is not trusted
	// yet and the list has room; the client should prompt the user before
	// calling the trust endpoint.
	DownloadNeedsConfirmation DownloadStatus = "needs_confirmation"
	// DownloadDenied means a policy check failed. Reason says which one.
	DownloadDenied DownloadStatus = "denied"
)

// RequestDownloadCommand is one user's attempt to download one file.
type RequestDownloadCommand struct {
	UserID    uint
	FileSID   string
	OrderSID  *string
	Signals   entitlement.DeviceSignals
	IPAddress string
}

// RequestDownloadResult is the full decision. Token fields are set only when
// Status is granted; Reason and Message are set only when it is not.
type RequestDownloadResult struct {
	Status      DownloadStatus
	Reason      string
	Message     string
	Token       string
	ExpiresAt   time.Time
	Reused      bool
	Fingerprint string
}

// subscriptionResolver narrows CurrentSubscriptionUseCase for testing.
type subscriptionResolver interface {
	Execute(ctx context.Context, userID uint) (*subscription.Subscription, error)
}

// tokenIssuer narrows IssueTokenUseCase for testing.
type tokenIssuer interface {
	Execute(ctx context.Context, cmd IssueTokenCommand) (*IssueTokenResult, error)
}

// RequestDownloadUseCase orchestrates a download request end to end: file
// eligibility, subscription resolution, device trust, quota evaluation, and
// finally token issuance. Policy denials come back as a denied Result with a
// nil error; only infrastructure failures return an error.
type RequestDownloadUseCase struct {
	fileRepo         catalog.FileRepository
	subscriptionRepo subscription.SubscriptionRepository
	usageRepo        usage.UsageRecordRepository
	currentSub       subscriptionResolver
	issuer           tokenIssuer
	locks            *keylock.KeyLock
	logger           logger.Interface
}

func NewRequestDownloadUseCase(
	fileRepo catalog.FileRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	usageRepo usage.UsageRecordRepository,
	currentSub subscriptionResolver,
	issuer tokenIssuer,
	locks *keylock.KeyLock,
	logger logger.Interface,
) *RequestDownloadUseCase {
	return &RequestDownloadUseCase{
		fileRepo:         fileRepo,
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		currentSub:       currentSub,
		issuer:           issuer,
		locks:            locks,
		logger:           logger,
	}
}

func (uc *RequestDownloadUseCase) Execute(ctx context.Context, cmd RequestDownloadCommand) (*RequestDownloadResult, error) {
	file, err := uc.fileRepo.GetBySID(ctx, cmd.FileSID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil || !file.Downloadable() {
		return denied(errors.ReasonFileNotEligible, "this file is not available for download"), nil
	}

	// Paid-purchase downloads are entitled by the order itself: no device
	// trust, no quota. The order service has already verified payment before
	// handing out the order SID.
	if cmd.OrderSID != nil {
		if file.Eligibility() != catalog.EligibilityPaid {
			return denied(errors.ReasonFileNotEligible, "this file is not sold through orders"), nil
		}
		return uc.issue(ctx, cmd, file, nil, nil)
	}

	// Free and featured files skip subscription gating entirely; the ledger
	// entry is written with no subscription attached.
	if file.Eligibility().IsFree() {
		return uc.issue(ctx, cmd, file, nil, nil)
	}

	if !file.Eligibility().IsGated() {
		return denied(errors.ReasonFileNotEligible, "this file requires a completed purchase"), nil
	}

	sub, err := uc.currentSub.Execute(ctx, cmd.UserID)
	if err != nil {
		if err == subscription.ErrNoCurrentSubscription {
			return denied(errors.ReasonNoActiveSubscription, "an active subscription is required to download this file"), nil
		}
		return nil, err
	}

	fingerprint := entitlement.DeriveFingerprint(cmd.Signals)

	trusted, _ := sub.IsTrustedDevice(fingerprint)
	if !trusted {
		if sub.Devices().HasRoom() {
			return &RequestDownloadResult{
				Status:      DownloadNeedsConfirmation,
				Message:     "this device is not trusted yet; confirm it to continue",
				Fingerprint: fingerprint,
			}, nil
		}
		return denied(errors.ReasonDeviceLimitExceeded,
			fmt.Sprintf("this subscription already has %d trusted devices; remove one to use this device", sub.Devices().Len())), nil
	}

	// Known device: refresh its last-used metadata. Best effort, a failed
	// write never blocks the download.
	uc.touchDevice(ctx, sub.ID(), fingerprint, cmd.IPAddress)

	subID := sub.ID()
	quotaCheck := func(ctx context.Context) error {
		return uc.evaluateQuota(ctx, cmd.UserID, sub, file.ByteSize())
	}

	return uc.issue(ctx, cmd, file, &subID, quotaCheck)
}

// touchDevice refreshes last-used metadata on the requesting device. It
// holds the same per-subscription lock as trust and removal and works on a
// freshly loaded copy, so a stale write cannot overwrite a concurrent list
// change.
func (uc *RequestDownloadUseCase) touchDevice(ctx context.Context, subID uint, fingerprint, ipAddress string) {
	err := uc.locks.WithLock(subscription.DeviceLockKey(subID), func() error {
		fresh, err := uc.subscriptionRepo.GetByID(ctx, subID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return subscription.ErrSubscriptionNotFound
		}
		if trusted, _ := fresh.IsTrustedDevice(fingerprint); !trusted {
			// Removed since the admission check; nothing to touch.
			return nil
		}
		fresh.TouchDevice(fingerprint, ipAddress)
		return uc.subscriptionRepo.UpdateDevices(ctx, fresh)
	})
	if err != nil {
		uc.logger.Warnw("failed to persist device last-used update",
			"subscription_id", subID,
			"error", err,
		)
	}
}

// evaluateQuota reloads the four ledger aggregates and runs the cap checks.
// It runs inside the issuer's per-download lock so a concurrent grant cannot
// slip between the read and the insert.
func (uc *RequestDownloadUseCase) evaluateQuota(ctx context.Context, userID uint, sub *subscription.Subscription, candidateBytes uint64) error {
	agg, err := uc.loadAggregates(ctx, userID, sub.ID())
	if err != nil {
		return fmt.Errorf("failed to load usage aggregates: %w", err)
	}

	if d := entitlement.EvaluateQuota(sub.Caps(), agg, candidateBytes); d != nil {
		return errors.NewQuotaExceededError(string(d.Reason), d.Message)
	}
	return nil
}

func (uc *RequestDownloadUseCase) loadAggregates(ctx context.Context, userID, subID uint) (usage.Aggregates, error) {
	var agg usage.Aggregates
	var err error

	if agg.TotalBytes, err = uc.usageRepo.SumBytes(ctx, userID, subID, time.Time{}); err != nil {
		return agg, err
	}
	if agg.TotalFiles, err = uc.usageRepo.CountFiles(ctx, userID, subID, time.Time{}); err != nil {
		return agg, err
	}

	dayStart := biztime.StartOfDayUTC(biztime.NowUTC())
	if agg.DailyBytes, err = uc.usageRepo.SumBytes(ctx, userID, subID, dayStart); err != nil {
		return agg, err
	}
	if agg.DailyFiles, err = uc.usageRepo.CountFiles(ctx, userID, subID, dayStart); err != nil {
		return agg, err
	}

	return agg, nil
}

// issue delegates to the token issuer and translates quota denials raised
// inside the lock back into a denied result.
func (uc *RequestDownloadUseCase) issue(
	ctx context.Context,
	cmd RequestDownloadCommand,
	file *catalog.File,
	subscriptionID *uint,
	preInsertCheck func(ctx context.Context) error,
) (*RequestDownloadResult, error) {
	issued, err := uc.issuer.Execute(ctx, IssueTokenCommand{
		UserID:         cmd.UserID,
		File:           file,
		SubscriptionID: subscriptionID,
		OrderSID:       cmd.OrderSID,
		PreInsertCheck: preInsertCheck,
	})
	if err != nil {
		if appErr := errors.GetAppError(err); appErr != nil && errors.IsQuotaExceededError(appErr) {
			return denied(appErr.Reason, appErr.Message), nil
		}
		return nil, err
	}

	uc.logger.Infow("download granted",
		"user_id", cmd.UserID,
		"file_sid", file.SID(),
		"reused", issued.Reused,
	)

	return &RequestDownloadResult{
		Status:    DownloadGranted,
		Token:     issued.Record.Token(),
		ExpiresAt: issued.Record.ExpiresAt(),
		Reused:    issued.Reused,
	}, nil
}

func denied(reason, message string) *RequestDownloadResult {
	return &RequestDownloadResult{
		Status:  DownloadDenied,
		Reason:  reason,
		Message: message,
	}
}
