package handlers

import (
	"context"

	"github.com/filemart-io/filemart/internal/domain/catalog"
	"github.com/filemart-io/filemart/internal/infrastructure/cache"
)

// Collaborator interfaces for CatalogHandler

type fileFinder interface {
	GetBySID(ctx context.Context, sid string) (*catalog.File, error)
}

type catalogCache interface {
	Get(ctx context.Context, fileSID string) (*cache.CachedFile, error)
	Set(ctx context.Context, cached *cache.CachedFile) error
}
