package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/filemart-io/filemart/internal/domain/usage"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/mappers"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
	"github.com/filemart-io/filemart/internal/shared/db"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

type UsageRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.UsageRecordMapper
	logger logger.Interface
}

func NewUsageRecordRepository(gormDB *gorm.DB, logger logger.Interface) usage.UsageRecordRepository {
	return &UsageRecordRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewUsageRecordMapper(),
		logger: logger,
	}
}

func (r *UsageRecordRepositoryImpl) Append(ctx context.Context, record *usage.UsageRecord) error {
	model, err := r.mapper.ToModel(record)
	if err != nil {
		return fmt.Errorf("failed to map usage record entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append usage record", "user_id", model.UserID, "file_id", model.FileID, "error", err)
		return fmt.Errorf("failed to append usage record: %w", err)
	}

	if err := record.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set usage record ID: %w", err)
	}

	r.logger.Debugw("usage record appended",
		"id", model.ID, "user_id", model.UserID, "file_id", model.FileID, "bytes", model.ByteSize)
	return nil
}

func (r *UsageRecordRepositoryImpl) LatestForDownload(ctx context.Context, userID, fileID uint, orderSID *string) (*usage.UsageRecord, error) {
	var model models.UsageRecordModel

	query := r.db.WithContext(ctx).Where("user_id = ? AND file_id = ?", userID, fileID)
	if orderSID != nil {
		query = query.Where("order_sid = ?", *orderSID)
	} else {
		query = query.Where("order_sid IS NULL")
	}

	if err := query.Order("issued_at DESC").First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get latest usage record", "user_id", userID, "file_id", fileID, "error", err)
		return nil, fmt.Errorf("failed to get latest usage record: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *UsageRecordRepositoryImpl) GetByToken(ctx context.Context, token string) (*usage.UsageRecord, error) {
	var model models.UsageRecordModel

	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get usage record by token", "error", err)
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *UsageRecordRepositoryImpl) SumBytes(ctx context.Context, userID, subscriptionID uint, since time.Time) (uint64, error) {
	var total *uint64

	query := r.db.WithContext(ctx).
		Model(&models.UsageRecordModel{}).
		Where("user_id = ? AND subscription_id = ?", userID, subscriptionID).
		Scopes(db.IssuedBetween(since, time.Time{}))

	if err := query.Select("SUM(byte_size)").Scan(&total).Error; err != nil {
		r.logger.Errorw("failed to sum usage bytes", "user_id", userID, "subscription_id", subscriptionID, "error", err)
		return 0, fmt.Errorf("failed to sum usage bytes: %w", err)
	}

	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *UsageRecordRepositoryImpl) CountFiles(ctx context.Context, userID, subscriptionID uint, since time.Time) (uint64, error) {
	var count int64

	query := r.db.WithContext(ctx).
		Model(&models.UsageRecordModel{}).
		Where("user_id = ? AND subscription_id = ?", userID, subscriptionID).
		Scopes(db.IssuedBetween(since, time.Time{}))

	if err := query.Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count usage records", "user_id", userID, "subscription_id", subscriptionID, "error", err)
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}

	return uint64(count), nil
}
