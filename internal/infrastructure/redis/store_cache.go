package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/pkg/logger"

	"github.com/go-redis/redis/v8"
)

type RedisStoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStoreCache(client *redis.Client, ttl time.Duration) *RedisStoreCache {
	return &RedisStoreCache{client: client, ttl: ttl}
}

func storeKey(storeID int64) string {
	return fmt.Sprintf("store:%d", storeID)
}

// GetStore returns domain.ErrNotFound on a cache miss.
func (r *RedisStoreCache) GetStore(ctx context.Context, storeID int64) (*domain.Store, error) {
	data, err := r.client.Get(ctx, storeKey(storeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var store domain.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *RedisStoreCache) SetStore(ctx context.Context, store *domain.Store) error {
	data, err := json.Marshal(store)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, storeKey(store.ID), data, r.ttl).Err()
}

// CachedStoreRepository reads stores through the cache. Cache errors are logged and the
// repository is used directly.
type CachedStoreRepository struct {
	cache domain.StoreCache
	repo  domain.StoreRepository
	log   logger.Logger
}

func NewCachedStoreRepository(cache domain.StoreCache, repo domain.StoreRepository, log logger.Logger) *CachedStoreRepository {
	return &CachedStoreRepository{cache: cache, repo: repo, log: log}
}

func (c *CachedStoreRepository) GetStore(ctx context.Context, storeID int64) (*domain.Store, error) {
	store, err := c.cache.GetStore(ctx, storeID)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		c.log.Warn("Store cache read failed", "store_id", storeID, "error", err)
	}

	store, err = c.repo.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetStore(ctx, store); err != nil {
		c.log.Warn("Store cache write failed", "store_id", storeID, "error", err)
	}
	return store, nil
}
