package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/filemart-io/filemart/internal/domain/subscription"
	"github.com/filemart-io/filemart/internal/infrastructure/persistence/models"
)

// trustedDeviceDTO is the JSON shape of one device inside the subscription
// row. Field names are part of the stored format.
type trustedDeviceDTO struct {
	Fingerprint string    `json:"fingerprint"`
	DisplayName string    `json:"display_name"`
	Platform    string    `json:"platform,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	TrustedAt   time.Time `json:"trusted_at"`
	LastUsedAt  time.Time `json:"last_used_at"`
}

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	devices, err := devicesFromJSON(model.Devices)
	if err != nil {
		return nil, err
	}

	entity, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:                model.ID,
		SID:               model.SID,
		UserID:            model.UserID,
		PackageID:         model.PackageID,
		LifetimeBandwidth: model.LifetimeBandwidth,
		LifetimeFiles:     model.LifetimeFiles,
		DailyBandwidth:    model.DailyBandwidth,
		DailyFiles:        model.DailyFiles,
		MaxDevices:        model.MaxDevices,
		Active:            model.Active,
		Current:           model.Current,
		ExpiresAt:         model.ExpiresAt,
		Devices:           devices,
		Version:           model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}

	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	devicesJSON, err := devicesToJSON(entity.Devices().All())
	if err != nil {
		return nil, err
	}

	caps := entity.Caps()
	return &models.SubscriptionModel{
		ID:                entity.ID(),
		SID:               entity.SID(),
		UserID:            entity.UserID(),
		PackageID:         entity.PackageID(),
		LifetimeBandwidth: caps.LifetimeBandwidth,
		LifetimeFiles:     caps.LifetimeFiles,
		DailyBandwidth:    caps.DailyBandwidth,
		DailyFiles:        caps.DailyFiles,
		MaxDevices:        entity.MaxDevices(),
		Active:            entity.IsActive(),
		Current:           entity.IsCurrent(),
		ExpiresAt:         entity.ExpiresAt(),
		Devices:           devicesJSON,
		Version:           entity.Version(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(subModels []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(subModels))
	for _, model := range subModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func devicesFromJSON(raw datatypes.JSON) ([]*subscription.TrustedDevice, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var dtos []trustedDeviceDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device list: %w", err)
	}

	devices := make([]*subscription.TrustedDevice, 0, len(dtos))
	for _, dto := range dtos {
		device, err := subscription.ReconstructTrustedDevice(
			dto.Fingerprint, dto.DisplayName, dto.Platform, dto.IPAddress, dto.UserAgent,
			dto.TrustedAt, dto.LastUsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct trusted device: %w", err)
		}
		devices = append(devices, device)
	}
	return devices, nil
}

func devicesToJSON(devices []*subscription.TrustedDevice) (datatypes.JSON, error) {
	dtos := make([]trustedDeviceDTO, 0, len(devices))
	for _, d := range devices {
		dtos = append(dtos, trustedDeviceDTO{
			Fingerprint: d.Fingerprint(),
			DisplayName: d.DisplayName(),
			Platform:    d.Platform(),
			IPAddress:   d.IPAddress(),
			UserAgent:   d.UserAgent(),
			TrustedAt:   d.TrustedAt(),
			LastUsedAt:  d.LastUsedAt(),
		})
	}

	data, err := json.Marshal(dtos)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device list: %w", err)
	}
	return data, nil
}
