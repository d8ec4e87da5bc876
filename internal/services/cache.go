package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// cacheKeyPrefix namespaces all entity-view cache keys.
	cacheKeyPrefix = "cache:"
	// entityCacheTTL is deliberately short: expanded views embed summaries of
	// other documents, and staleness is bounded by the TTL rather than by
	// cross-entity invalidation.
	entityCacheTTL = 60 * time.Second
)

// CacheService is a read-through cache for expanded entity views. A nil
// receiver or nil client disables caching, so every caller can use it
// unconditionally.
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

func (c *CacheService) enabled() bool {
	return c != nil && c.client != nil
}

// Get retrieves a cached view into dest. A miss is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores a view. Failures are ignored; the store remains authoritative.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKeyPrefix+key, data, entityCacheTTL)
}

// Invalidate drops the given keys after a mutation.
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = cacheKeyPrefix + k
	}
	c.client.Del(ctx, prefixed...)
}

// UserCacheKey and ThoughtCacheKey name the cached expanded views.
func UserCacheKey(id string) string    { return fmt.Sprintf("user:%s", id) }
func ThoughtCacheKey(id string) string { return fmt.Sprintf("thought:%s", id) }
