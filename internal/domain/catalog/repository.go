package catalog

import "context"

// FileRepository is the persistence boundary for catalog files.
type FileRepository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, fileID uint) (*File, error)
	GetBySID(ctx context.Context, sid string) (*File, error)
	// IncrementDownloadCount bumps the display download counter atomically.
	// Callers treat failures as best-effort.
	IncrementDownloadCount(ctx context.Context, fileID uint) error
}
