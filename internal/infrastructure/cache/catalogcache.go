// Package cache provides Redis-backed read caches for the catalog.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/filemart-io/filemart/internal/shared/logger"
)

const (
	catalogFilePrefix = "catalog:file:"
	catalogFileTTL    = 10 * time.Minute
)

// CachedFile is the JSON read model stored per catalog file. It carries what
// listing pages need; the full entity always comes from the repository.
type CachedFile struct {
	SID           string `json:"sid"`
	Title         string `json:"title"`
	ByteSize      uint64 `json:"byte_size"`
	Eligibility   string `json:"eligibility"`
	Active        bool   `json:"active"`
	DownloadCount uint64 `json:"download_count"`
}

// CatalogCache stores file read models in Redis keyed by file SID. A cache
// miss is nil, nil; callers always fall back to the repository.
type CatalogCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewCatalogCache(client *redis.Client, logger logger.Interface) *CatalogCache {
	return &CatalogCache{client: client, logger: logger}
}

func (c *CatalogCache) Get(ctx context.Context, fileSID string) (*CachedFile, error) {
	data, err := c.client.Get(ctx, catalogFilePrefix+fileSID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var cached CachedFile
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupt entries are evicted rather than surfaced.
		c.logger.Warnw("dropping corrupt catalog cache entry", "file_sid", fileSID, "error", err)
		c.client.Del(ctx, catalogFilePrefix+fileSID)
		return nil, nil
	}

	return &cached, nil
}

func (c *CatalogCache) Set(ctx context.Context, cached *CachedFile) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog cache entry: %w", err)
	}

	if err := c.client.Set(ctx, catalogFilePrefix+cached.SID, data, catalogFileTTL).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// Invalidate deletes all keys matching the given pattern using SCAN, so a
// counter bump or file edit drops every derived entry without blocking Redis.
func (c *CatalogCache) Invalidate(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete catalog cache keys: %w", err)
	}

	c.logger.Debugw("catalog cache invalidated", "pattern", pattern, "keys", len(keys))
	return nil
}
