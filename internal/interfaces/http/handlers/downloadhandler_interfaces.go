package handlers

import (
	"context"

	"github.com/filemart-io/filemart/internal/application/download/usecases"
)

// Use case interfaces for DownloadHandler

type requestDownloadUseCase interface {
	Execute(ctx context.Context, cmd usecases.RequestDownloadCommand) (*usecases.RequestDownloadResult, error)
}

type redeemTokenUseCase interface {
	Execute(ctx context.Context, cmd usecases.RedeemTokenCommand) (*usecases.RedeemTokenResult, error)
}
