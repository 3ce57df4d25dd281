package usecases

import (
	"context"
	"time"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/domain/usage"
	"github.com/filemart-io/filemart/internal/shared/logger"

	"github.com/stretchr/testify/mock"
)

type mockFileRepository struct {
	mock.Mock
}

func (m *mockFileRepository) Create(ctx context.Context, f *catalog.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockFileRepository) GetByID(ctx context.Context, fileID uint) (*catalog.File, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.File), args.Error(1)
}

func (m *mockFileRepository) GetBySID(ctx context.Context, sid string) (*catalog.File, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.File), args.Error(1)
}

func (m *mockFileRepository) IncrementDownloadCount(ctx context.Context, fileID uint) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, subID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, subID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) GetActiveByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) SetCurrent(ctx context.Context, userID, subID uint) error {
	args := m.Called(ctx, userID, subID)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) UpdateDevices(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type mockUsageRecordRepository struct {
	mock.Mock
}

func (m *mockUsageRecordRepository) Append(ctx context.Context, record *usage.UsageRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockUsageRecordRepository) LatestForDownload(ctx context.Context, userID, fileID uint, orderSID *string) (*usage.UsageRecord, error) {
	args := m.Called(ctx, userID, fileID, orderSID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usage.UsageRecord), args.Error(1)
}

func (m *mockUsageRecordRepository) GetByToken(ctx context.Context, token string) (*usage.UsageRecord, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usage.UsageRecord), args.Error(1)
}

func (m *mockUsageRecordRepository) SumBytes(ctx context.Context, userID, subscriptionID uint, since time.Time) (uint64, error) {
	args := m.Called(ctx, userID, subscriptionID, since)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockUsageRecordRepository) CountFiles(ctx context.Context, userID, subscriptionID uint, since time.Time) (uint64, error) {
	args := m.Called(ctx, userID, subscriptionID, since)
	return args.Get(0).(uint64), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyFileDownloaded(ctx context.Context, userID uint, fileTitle string) error {
	args := m.Called(ctx, userID, fileTitle)
	return args.Error(0)
}

func (m *mockNotifier) NotifyDeviceTrusted(ctx context.Context, userID uint, deviceName string) error {
	args := m.Called(ctx, userID, deviceName)
	return args.Error(0)
}

type mockCacheInvalidator struct {
	mock.Mock
}

func (m *mockCacheInvalidator) Invalidate(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

type mockSubscriptionResolver struct {
	mock.Mock
}

func (m *mockSubscriptionResolver) Execute(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

// noopLogger satisfies logger.Interface for tests that do not assert on logs.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any)            {}
func (noopLogger) Info(string, ...any)             {}
func (noopLogger) Warn(string, ...any)             {}
func (noopLogger) Error(string, ...any)            {}
func (l noopLogger) With(...any) logger.Interface  { return l }
func (l noopLogger) Named(string) logger.Interface { return l }
func (noopLogger) Debugw(string, ...interface{})   {}
func (noopLogger) Infow(string, ...interface{})    {}
func (noopLogger) Warnw(string, ...interface{})    {}
func (noopLogger) Errorw(string, ...interface{})   {}
