package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/domain/entitlement"
	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSubscription(t *testing.T, caps subscription.Caps, maxDevices int) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(42, 3, caps, maxDevices, time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, sub.SetID(11))
	require.NoError(t, sub.MarkCurrent())
	return sub
}

func trustFingerprint(t *testing.T, sub *subscription.Subscription, signals entitlement.DeviceSignals) string {
	t.Helper()
	fp := entitlement.DeriveFingerprint(signals)
	device, err := subscription.NewTrustedDevice(fp, "Laptop", signals.Platform, "203.0.113.5", "test-agent")
	require.NoError(t, err)
	_, err = sub.TrustDevice(device)
	require.NoError(t, err)
	return fp
}

type requestFixture struct {
	fileRepo   *mockFileRepository
	subRepo    *mockSubscriptionRepository
	usageRepo  *mockUsageRecordRepository
	resolver   *mockSubscriptionResolver
	notifier   *mockNotifier
	cache      *mockCacheInvalidator
	uc         *RequestDownloadUseCase
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		fileRepo:  new(mockFileRepository),
		subRepo:   new(mockSubscriptionRepository),
		usageRepo: new(mockUsageRecordRepository),
		resolver:  new(mockSubscriptionResolver),
		notifier:  new(mockNotifier),
		cache:     new(mockCacheInvalidator),
	}
	allowSideEffects(f.fileRepo, f.notifier, f.cache)
	locks := keylock.New()
	issuer := NewIssueTokenUseCase(f.usageRepo, f.fileRepo, f.notifier, f.cache, locks, time.Hour, noopLogger{})
	f.uc = NewRequestDownloadUseCase(f.fileRepo, f.subRepo, f.usageRepo, f.resolver, issuer, locks, noopLogger{})
	return f
}

// expectTouch wires the locked last-used refresh: reload by id, then persist.
func (f *requestFixture) expectTouch(sub *subscription.Subscription, persistErr error) {
	f.subRepo.On("GetByID", mock.Anything, sub.ID()).Return(sub, nil)
	f.subRepo.On("UpdateDevices", mock.Anything, sub).Return(persistErr)
}

var laptopSignals = entitlement.DeviceSignals{
	Platform:       "macOS",
	Architecture:   "arm64",
	Mobile:         "?0",
	AcceptLanguage: "en-US,en;q=0.9",
}

func (f *requestFixture) expectNoUsage() {
	f.usageRepo.On("LatestForDownload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	f.usageRepo.On("Append", mock.Anything, mock.AnythingOfType("*usage.UsageRecord")).Return(nil)
}

func (f *requestFixture) expectAggregates(totalBytes, totalFiles, dailyBytes, dailyFiles uint64) {
	f.usageRepo.On("SumBytes", mock.Anything, uint(42), uint(11), time.Time{}).Return(totalBytes, nil)
	f.usageRepo.On("CountFiles", mock.Anything, uint(42), uint(11), time.Time{}).Return(totalFiles, nil)
	f.usageRepo.On("SumBytes", mock.Anything, uint(42), uint(11), mock.AnythingOfType("time.Time")).Return(dailyBytes, nil)
	f.usageRepo.On("CountFiles", mock.Anything, uint(42), uint(11), mock.AnythingOfType("time.Time")).Return(dailyFiles, nil)
}

func TestRequestDownload_UnknownFileDenied(t *testing.T) {
	f := newRequestFixture()
	f.fileRepo.On("GetBySID", mock.Anything, "file_missing0000").Return(nil, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{UserID: 42, FileSID: "file_missing0000"})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonFileNotEligible, result.Reason)
}

func TestRequestDownload_InactiveFileDenied(t *testing.T) {
	f := newRequestFixture()
	file, err := catalog.ReconstructFile(catalog.FileReconstructParams{
		ID:          7,
		SID:         "file_inactive001",
		Title:       "Pulled Pack",
		ByteSize:    100,
		Reference:   "s3://bucket/pulled.zip",
		Eligibility: catalog.EligibilitySubscription,
		Active:      false,
	})
	require.NoError(t, err)
	f.fileRepo.On("GetBySID", mock.Anything, "file_inactive001").Return(file, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{UserID: 42, FileSID: "file_inactive001"})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonFileNotEligible, result.Reason)
}

func TestRequestDownload_FreeFileSkipsSubscription(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilityFree)
	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.expectNoUsage()

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{UserID: 42, FileSID: file.SID()})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
	assert.NotEmpty(t, result.Token)
	// No subscription resolution, no quota reads for free files.
	f.resolver.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	f.usageRepo.AssertNotCalled(t, "SumBytes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestDownload_OrderScopedSkipsDeviceAndQuota(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilityPaid)
	orderSID := "ord_paid00000001"
	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.expectNoUsage()

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:   42,
		FileSID:  file.SID(),
		OrderSID: &orderSID,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
	f.resolver.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRequestDownload_OrderForNonPaidFileDenied(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilitySubscription)
	orderSID := "ord_paid00000001"
	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:   42,
		FileSID:  file.SID(),
		OrderSID: &orderSID,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonFileNotEligible, result.Reason)
}

func TestRequestDownload_PaidFileWithoutOrderDenied(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilityPaid)
	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{UserID: 42, FileSID: file.SID()})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonFileNotEligible, result.Reason)
}

func TestRequestDownload_NoSubscriptionDenied(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilitySubscription)
	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(nil, subscription.ErrNoCurrentSubscription)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{UserID: 42, FileSID: file.SID()})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonNoActiveSubscription, result.Reason)
}

func TestRequestDownload_UntrustedDeviceWithRoomNeedsConfirmation(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{}, 2)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadNeedsConfirmation, result.Status)
	assert.Equal(t, entitlement.DeriveFingerprint(laptopSignals), result.Fingerprint)
	assert.Empty(t, result.Token)
}

func TestRequestDownload_UntrustedDeviceListFullDenied(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 500, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{}, 1)
	trustFingerprint(t, sub, entitlement.DeviceSignals{Platform: "Windows", Architecture: "x86"})

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonDeviceLimitExceeded, result.Reason)
}

func TestRequestDownload_TrustedDeviceUnderQuotaGranted(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 900_000, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{LifetimeBandwidth: 1_000_000}, 2)
	trustFingerprint(t, sub, laptopSignals)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)
	f.expectTouch(sub, nil)
	f.expectAggregates(0, 0, 0, 0)
	f.expectNoUsage()

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
	assert.NotEmpty(t, result.Token)
	f.subRepo.AssertExpectations(t)
}

func TestRequestDownload_LifetimeBandwidthDenied(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 900_000, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{LifetimeBandwidth: 1_000_000}, 2)
	trustFingerprint(t, sub, laptopSignals)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)
	f.expectTouch(sub, nil)
	// 200k already used; admitting 900k more would overshoot the 1M cap.
	f.expectAggregates(200_000, 1, 0, 0)
	f.usageRepo.On("LatestForDownload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonLifetimeBandwidthExceeded, result.Reason)
	f.usageRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRequestDownload_RepeatUnderCapReusesInsteadOfDenying(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 900_000, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{LifetimeBandwidth: 1_000_000}, 2)
	trustFingerprint(t, sub, laptopSignals)
	prior := liveRecord(t, 42, 7)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)
	f.expectTouch(sub, nil)
	// The 900k is already on the ledger, so another fresh insert would be
	// denied; the live token makes the request a reuse instead.
	f.usageRepo.On("LatestForDownload", mock.Anything, uint(42), uint(7), (*string)(nil)).Return(prior, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
	assert.True(t, result.Reused)
	assert.Equal(t, prior.Token(), result.Token)
	f.usageRepo.AssertNotCalled(t, "SumBytes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestDownload_DailyFileCountDenied(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 100, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{DailyFiles: 5}, 2)
	trustFingerprint(t, sub, laptopSignals)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)
	f.expectTouch(sub, nil)
	f.expectAggregates(0, 5, 0, 5)
	f.usageRepo.On("LatestForDownload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadDenied, result.Status)
	assert.Equal(t, errors.ReasonDailyFileCountExceeded, result.Reason)
}

func TestRequestDownload_DeviceTouchFailureDoesNotBlock(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 100, catalog.EligibilitySubscription)
	sub := testSubscription(t, subscription.Caps{}, 2)
	trustFingerprint(t, sub, laptopSignals)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(sub, nil)
	f.expectTouch(sub, assert.AnError)
	f.expectAggregates(0, 0, 0, 0)
	f.expectNoUsage()

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
}

func TestRequestDownload_TouchKeepsConcurrentlyTrustedDevice(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 100, catalog.EligibilitySubscription)

	// The resolver handed out this copy before a phone joined the list.
	stale := testSubscription(t, subscription.Caps{}, 3)
	trustFingerprint(t, stale, laptopSignals)

	fresh := testSubscription(t, subscription.Caps{}, 3)
	trustFingerprint(t, fresh, laptopSignals)
	phoneFP := trustFingerprint(t, fresh, entitlement.DeviceSignals{Platform: "Android", Mobile: "?1"})

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(stale, nil)
	f.subRepo.On("GetByID", mock.Anything, uint(11)).Return(fresh, nil)

	var persisted *subscription.Subscription
	f.subRepo.On("UpdateDevices", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*subscription.Subscription) }).
		Return(nil)
	f.expectAggregates(0, 0, 0, 0)
	f.expectNoUsage()

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
	require.NotNil(t, persisted)
	trusted, _ := persisted.IsTrustedDevice(phoneFP)
	assert.True(t, trusted, "last-used refresh must not drop a device trusted after the subscription was loaded")
}

func TestRequestDownload_TouchSkipsConcurrentlyRemovedDevice(t *testing.T) {
	f := newRequestFixture()
	file := testFile(t, 100, catalog.EligibilitySubscription)

	stale := testSubscription(t, subscription.Caps{}, 3)
	trustFingerprint(t, stale, laptopSignals)

	// Reloaded copy no longer trusts the requesting device.
	fresh := testSubscription(t, subscription.Caps{}, 3)

	f.fileRepo.On("GetBySID", mock.Anything, file.SID()).Return(file, nil)
	f.resolver.On("Execute", mock.Anything, uint(42)).Return(stale, nil)
	f.subRepo.On("GetByID", mock.Anything, uint(11)).Return(fresh, nil)
	f.expectAggregates(0, 0, 0, 0)
	f.expectNoUsage()

	result, err := f.uc.Execute(context.Background(), RequestDownloadCommand{
		UserID:  42,
		FileSID: file.SID(),
		Signals: laptopSignals,
	})

	require.NoError(t, err)
	assert.Equal(t, DownloadGranted, result.Status)
	f.subRepo.AssertNotCalled(t, "UpdateDevices", mock.Anything, mock.Anything)
}
