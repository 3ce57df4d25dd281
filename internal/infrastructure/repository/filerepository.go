// Package repository contains GORM-backed implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/mappers"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.FileMapper
	logger logger.Interface
}

func NewFileRepository(db *gorm.DB, logger logger.Interface) catalog.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mappers.NewFileMapper(),
		logger: logger,
	}
}

func (r *FileRepositoryImpl) Create(ctx context.Context, fileEntity *catalog.File) error {
	model, err := r.mapper.ToModel(fileEntity)
	if err != nil {
		r.logger.Errorw("failed to map file entity to model", "error", err)
		return fmt.Errorf("failed to map file entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create file in database", "error", err)
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := fileEntity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set file ID: %w", err)
	}

	r.logger.Infow("file created successfully", "id", model.ID, "sid", model.SID)
	return nil
}

func (r *FileRepositoryImpl) GetByID(ctx context.Context, fileID uint) (*catalog.File, error) {
	var model models.FileModel

	if err := r.db.WithContext(ctx).First(&model, fileID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get file by ID", "id", fileID, "error", err)
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *FileRepositoryImpl) GetBySID(ctx context.Context, sid string) (*catalog.File, error) {
	var model models.FileModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get file by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// IncrementDownloadCount bumps the display counter atomically in SQL. The
// counter is informational; ledger sums are the source of truth for quota.
func (r *FileRepositoryImpl) IncrementDownloadCount(ctx context.Context, fileID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.FileModel{}).
		Where("id = ?", fileID).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment download count: %w", result.Error)
	}
	return nil
}
