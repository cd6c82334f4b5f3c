package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"promoMarket/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogEntryTTL = 24 * time.Hour

type CatalogCache struct {
	client *redis.Client
}

func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{
		client: client,
	}
}

// GetEntry returns the cached catalog entry for a barcode, or (nil, nil) on
// a cache miss.
func (r *CatalogCache) GetEntry(ctx context.Context, barcode string) (*domain.CatalogEntry, error) {
	key := fmt.Sprintf("catalog:barcode:%s", barcode)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog entry from Redis: %w", err)
	}

	var entry domain.CatalogEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog entry: %w", err)
	}

	return &entry, nil
}

func (r *CatalogCache) StoreEntry(ctx context.Context, barcode string, entry *domain.CatalogEntry) error {
	key := fmt.Sprintf("catalog:barcode:%s", barcode)

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}

	err = r.client.Set(ctx, key, jsonData, catalogEntryTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to store catalog entry in Redis: %w", err)
	}

	return nil
}
