package usecases

import (
	"context"
	"testing"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRedeemToken_Success(t *testing.T) {
	usageRepo := new(mockUsageRecordRepository)
	fileRepo := new(mockFileRepository)

	file := testFile(t, 900_000, catalog.EligibilitySubscription)
	record := liveRecord(t, 42, 7)

	usageRepo.On("GetByToken", mock.Anything, record.Token()).Return(record, nil)
	fileRepo.On("GetByID", mock.Anything, uint(7)).Return(file, nil)

	uc := NewRedeemTokenUseCase(usageRepo, fileRepo, noopLogger{})
	result, err := uc.Execute(context.Background(), RedeemTokenCommand{UserID: 42, Token: record.Token()})

	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/sample.zip", result.FileReference)
	assert.Equal(t, "Sample Pack", result.FileTitle)
	assert.Equal(t, uint64(900_000), result.ByteSize)
}

func TestRedeemToken_UnknownToken(t *testing.T) {
	usageRepo := new(mockUsageRecordRepository)
	fileRepo := new(mockFileRepository)

	usageRepo.On("GetByToken", mock.Anything, "deadbeef").Return(nil, nil)

	uc := NewRedeemTokenUseCase(usageRepo, fileRepo, noopLogger{})
	_, err := uc.Execute(context.Background(), RedeemTokenCommand{UserID: 42, Token: "deadbeef"})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ReasonTokenNotFound, appErr.Reason)
}

func TestRedeemToken_Expired(t *testing.T) {
	usageRepo := new(mockUsageRecordRepository)
	fileRepo := new(mockFileRepository)

	record := expiredRecord(t, 42, 7)
	usageRepo.On("GetByToken", mock.Anything, record.Token()).Return(record, nil)

	uc := NewRedeemTokenUseCase(usageRepo, fileRepo, noopLogger{})
	_, err := uc.Execute(context.Background(), RedeemTokenCommand{UserID: 42, Token: record.Token()})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ReasonTokenExpired, appErr.Reason)
	fileRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRedeemToken_ExpiredBeforeOwnership(t *testing.T) {
	usageRepo := new(mockUsageRecordRepository)
	fileRepo := new(mockFileRepository)

	// A dead token presented by someone else reads as expired, not as an
	// ownership failure.
	record := expiredRecord(t, 42, 7)
	usageRepo.On("GetByToken", mock.Anything, record.Token()).Return(record, nil)

	uc := NewRedeemTokenUseCase(usageRepo, fileRepo, noopLogger{})
	_, err := uc.Execute(context.Background(), RedeemTokenCommand{UserID: 99, Token: record.Token()})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ReasonTokenExpired, appErr.Reason)
}

func TestRedeemToken_OwnerMismatch(t *testing.T) {
	usageRepo := new(mockUsageRecordRepository)
	fileRepo := new(mockFileRepository)

	record := liveRecord(t, 42, 7)
	usageRepo.On("GetByToken", mock.Anything, record.Token()).Return(record, nil)

	uc := NewRedeemTokenUseCase(usageRepo, fileRepo, noopLogger{})
	_, err := uc.Execute(context.Background(), RedeemTokenCommand{UserID: 99, Token: record.Token()})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ReasonTokenOwnerMismatch, appErr.Reason)
}

func TestRedeemToken_EmptyToken(t *testing.T) {
	uc := NewRedeemTokenUseCase(new(mockUsageRecordRepository), new(mockFileRepository), noopLogger{})
	_, err := uc.Execute(context.Background(), RedeemTokenCommand{UserID: 42})

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
