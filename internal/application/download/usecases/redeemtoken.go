package usecases

import (
	"context"
	"fmt"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/domain/usage"
	"github.com/filemart-io/filemart/internal/shared/biztime"
	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// RedeemTokenCommand exchanges a token for the underlying file reference.
type RedeemTokenCommand struct {
	UserID uint
	Token  string
}

// RedeemTokenResult carries what the delivery layer needs to serve the file.
type RedeemTokenResult struct {
	FileReference string
	FileTitle     string
	ByteSize      uint64
}

// RedeemTokenUseCase validates a presented download token and resolves it to
// the stored file reference. Redemption does not consume the token; it stays
// valid until expiry.
type RedeemTokenUseCase struct {
	usageRepo usage.UsageRecordRepository
	fileRepo  catalog.FileRepository
	logger    logger.Interface
}

func NewRedeemTokenUseCase(
	usageRepo usage.UsageRecordRepository,
	fileRepo catalog.FileRepository,
	logger logger.Interface,
) *RedeemTokenUseCase {
	return &RedeemTokenUseCase{
		usageRepo: usageRepo,
		fileRepo:  fileRepo,
		logger:    logger,
	}
}

func (uc *RedeemTokenUseCase) Execute(ctx context.Context, cmd RedeemTokenCommand) (*RedeemTokenResult, error) {
	if cmd.Token == "" {
		return nil, errors.NewValidationError("token is required")
	}

	record, err := uc.usageRepo.GetByToken(ctx, cmd.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if record == nil {
		return nil, errors.NewTokenNotFoundError()
	}

	// Expiry first: a dead token reads the same no matter who presents it.
	if !record.IsLive(biztime.NowUTC()) {
		return nil, errors.NewTokenExpiredError()
	}

	if !record.BelongsTo(cmd.UserID) {
		uc.logger.Warnw("token presented by non-owner",
			"token_owner", record.UserID(),
			"presenter", cmd.UserID,
		)
		return nil, errors.NewTokenOwnerMismatchError()
	}

	file, err := uc.fileRepo.GetByID(ctx, record.FileID())
	if err != nil {
		return nil, fmt.Errorf("failed to load file for token: %w", err)
	}
	if file == nil {
		return nil, errors.NewNotFoundError("file no longer exists")
	}

	return &RedeemTokenResult{
		FileReference: file.Reference(),
		FileTitle:     file.Title(),
		ByteSize:      file.ByteSize(),
	}, nil
}
