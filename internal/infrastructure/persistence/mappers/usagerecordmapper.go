package mappers

import (
	"fmt"

	"github.com/filemart-io/filemart/internal/domain/usage"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
)

type UsageRecordMapper interface {
	ToEntity(model *models.UsageRecordModel) (*usage.UsageRecord, error)
	ToModel(entity *usage.UsageRecord) (*models.UsageRecordModel, error)
	ToEntities(models []*models.UsageRecordModel) ([]*usage.UsageRecord, error)
}

type UsageRecordMapperImpl struct{}

func NewUsageRecordMapper() UsageRecordMapper {
	return &UsageRecordMapperImpl{}
}

func (m *UsageRecordMapperImpl) ToEntity(model *models.UsageRecordModel) (*usage.UsageRecord, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := usage.ReconstructUsageRecord(usage.UsageRecordReconstructParams{
		ID:             model.ID,
		SID:            model.SID,
		UserID:         model.UserID,
		SubscriptionID: model.SubscriptionID,
		OrderSID:       model.OrderSID,
		FileID:         model.FileID,
		ByteSize:       model.ByteSize,
		Token:          model.Token,
		IssuedAt:       model.IssuedAt,
		ExpiresAt:      model.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct usage record entity: %w", err)
	}

	return entity, nil
}

func (m *UsageRecordMapperImpl) ToModel(entity *usage.UsageRecord) (*models.UsageRecordModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.UsageRecordModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		UserID:         entity.UserID(),
		SubscriptionID: entity.SubscriptionID(),
		OrderSID:       entity.OrderSID(),
		FileID:         entity.FileID(),
		ByteSize:       entity.ByteSize(),
		Token:          entity.Token(),
		IssuedAt:       entity.IssuedAt(),
		ExpiresAt:      entity.ExpiresAt(),
	}, nil
}

func (m *UsageRecordMapperImpl) ToEntities(recordModels []*models.UsageRecordModel) ([]*usage.UsageRecord, error) {
	entities := make([]*usage.UsageRecord, 0, len(recordModels))
	for _, model := range recordModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
