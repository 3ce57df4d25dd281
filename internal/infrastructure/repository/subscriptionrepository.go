package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/mappers"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
	"github.com/filemart-io/filemart/internal/shared/db"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	txm    *db.TransactionManager
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(gormDB *gorm.DB, logger logger.Interface) subscription.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     gormDB,
		txm:    db.NewTransactionManager(gormDB),
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscriptionEntity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(subscriptionEntity)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := subscriptionEntity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created successfully",
		"id", model.ID, "user_id", model.UserID, "package_id", model.PackageID)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, subID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).First(&model, subID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", subID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetActiveByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	var subModels []*models.SubscriptionModel

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Where("expires_at > ?", time.Now().UTC()).
		Order("created_at DESC").
		Find(&subModels).Error
	if err != nil {
		r.logger.Errorw("failed to list active subscriptions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list active subscriptions: %w", err)
	}

	return r.mapper.ToEntities(subModels)
}

// SetCurrent marks one subscription current and clears the flag on the user's
// others inside a single transaction.
func (r *SubscriptionRepositoryImpl) SetCurrent(ctx context.Context, userID, subID uint) error {
	return r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.txm.GetTx(txCtx)
		if err := tx.Model(&models.SubscriptionModel{}).
			Where("user_id = ? AND id != ?", userID, subID).
			Update("current", false).Error; err != nil {
			return fmt.Errorf("failed to clear current flags: %w", err)
		}

		if err := tx.Model(&models.SubscriptionModel{}).
			Where("id = ? AND user_id = ?", subID, userID).
			Update("current", true).Error; err != nil {
			return fmt.Errorf("failed to set current flag: %w", err)
		}

		return nil
	})
}

// UpdateDevices persists the device list and version. Callers hold the
// per-subscription advisory lock across the read-modify-write.
func (r *SubscriptionRepositoryImpl) UpdateDevices(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", sub.ID()).
		Updates(map[string]interface{}{
			"devices":    model.Devices,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update device list", "id", sub.ID(), "error", result.Error)
		return fmt.Errorf("failed to update device list: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", sub.ID()).
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", sub.ID(), "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	return nil
}
