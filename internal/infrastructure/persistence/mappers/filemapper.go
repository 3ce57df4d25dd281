// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"fmt"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
)

type FileMapper interface {
	ToEntity(model *models.FileModel) (*catalog.File, error)
	ToModel(entity *catalog.File) (*models.FileModel, error)
	ToEntities(models []*models.FileModel) ([]*catalog.File, error)
}

type FileMapperImpl struct{}

func NewFileMapper() FileMapper {
	return &FileMapperImpl{}
}

func (m *FileMapperImpl) ToEntity(model *models.FileModel) (*catalog.File, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := catalog.ReconstructFile(catalog.FileReconstructParams{
		ID:            model.ID,
		SID:           model.SID,
		Title:         model.Title,
		ByteSize:      model.ByteSize,
		Reference:     model.Reference,
		Eligibility:   catalog.EligibilityClass(model.Eligibility),
		Active:        model.Active,
		DownloadCount: model.DownloadCount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct file entity: %w", err)
	}

	return entity, nil
}

func (m *FileMapperImpl) ToModel(entity *catalog.File) (*models.FileModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.FileModel{
		ID:            entity.ID(),
		SID:           entity.SID(),
		Title:         entity.Title(),
		ByteSize:      entity.ByteSize(),
		Reference:     entity.Reference(),
		Eligibility:   string(entity.Eligibility()),
		Active:        entity.IsActive(),
		DownloadCount: entity.DownloadCount(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}

func (m *FileMapperImpl) ToEntities(fileModels []*models.FileModel) ([]*catalog.File, error) {
	entities := make([]*catalog.File, 0, len(fileModels))
	for _, model := range fileModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
