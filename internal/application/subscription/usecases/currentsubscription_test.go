package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func buildSubscription(t *testing.T, id uint, current bool) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(42, 3, subscription.Caps{}, 2, time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, sub.SetID(id))
	if current {
		require.NoError(t, sub.MarkCurrent())
	}
	return sub
}

func buildExpiredSubscription(t *testing.T, id uint) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:         id,
		SID:        "sub_expired00001",
		UserID:     42,
		PackageID:  3,
		MaxDevices: 2,
		Active:     true,
		ExpiresAt:  time.Now().UTC().Add(-time.Hour),
		Version:    1,
	})
	require.NoError(t, err)
	return sub
}

func TestCurrentSubscription_ReturnsMarkedCurrent(t *testing.T) {
	repo := new(mockSubscriptionRepository)
	older := buildSubscription(t, 10, false)
	current := buildSubscription(t, 11, true)

	repo.On("GetActiveByUserID", mock.Anything, uint(42)).
		Return([]*subscription.Subscription{current, older}, nil)

	uc := NewCurrentSubscriptionUseCase(repo, noopLogger{})
	sub, err := uc.Execute(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, uint(11), sub.ID())
	repo.AssertNotCalled(t, "SetCurrent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCurrentSubscription_PromotesNewestUsable(t *testing.T) {
	repo := new(mockSubscriptionRepository)
	newest := buildSubscription(t, 12, false)
	older := buildSubscription(t, 10, false)

	repo.On("GetActiveByUserID", mock.Anything, uint(42)).
		Return([]*subscription.Subscription{newest, older}, nil)
	repo.On("SetCurrent", mock.Anything, uint(42), uint(12)).Return(nil)

	uc := NewCurrentSubscriptionUseCase(repo, noopLogger{})
	sub, err := uc.Execute(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, uint(12), sub.ID())
	assert.True(t, sub.IsCurrent())
	repo.AssertExpectations(t)
}

func TestCurrentSubscription_SkipsExpired(t *testing.T) {
	repo := new(mockSubscriptionRepository)
	expired := buildExpiredSubscription(t, 10)
	usable := buildSubscription(t, 11, false)

	repo.On("GetActiveByUserID", mock.Anything, uint(42)).
		Return([]*subscription.Subscription{expired, usable}, nil)
	repo.On("SetCurrent", mock.Anything, uint(42), uint(11)).Return(nil)

	uc := NewCurrentSubscriptionUseCase(repo, noopLogger{})
	sub, err := uc.Execute(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, uint(11), sub.ID())
}

func TestCurrentSubscription_NoneUsable(t *testing.T) {
	repo := new(mockSubscriptionRepository)
	expired := buildExpiredSubscription(t, 10)

	repo.On("GetActiveByUserID", mock.Anything, uint(42)).
		Return([]*subscription.Subscription{expired}, nil)

	uc := NewCurrentSubscriptionUseCase(repo, noopLogger{})
	_, err := uc.Execute(context.Background(), 42)

	require.ErrorIs(t, err, subscription.ErrNoCurrentSubscription)
}

func TestCurrentSubscription_EmptyList(t *testing.T) {
	repo := new(mockSubscriptionRepository)
	repo.On("GetActiveByUserID", mock.Anything, uint(42)).
		Return([]*subscription.Subscription{}, nil)

	uc := NewCurrentSubscriptionUseCase(repo, noopLogger{})
	_, err := uc.Execute(context.Background(), 42)

	require.ErrorIs(t, err, subscription.ErrNoCurrentSubscription)
}
