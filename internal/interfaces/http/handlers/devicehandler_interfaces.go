package handlers

import (
	"context"

	"github.com/filemart-io/filemart/internal/application/device/usecases"
)

// Use case interfaces for DeviceHandler

type trustDeviceUseCase interface {
	Execute(ctx context.Context, cmd usecases.TrustDeviceCommand) (*usecases.TrustDeviceResult, error)
}

type listDevicesUseCase interface {
	Execute(ctx context.Context, cmd usecases.ListDevicesCommand) (*usecases.ListDevicesResult, error)
}

type removeDeviceUseCase interface {
	Execute(ctx context.Context, cmd usecases.RemoveDeviceCommand) (*usecases.RemoveDeviceResult, error)
}
