package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides common caching operations for repositories
type CacheHelper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	// pending is set on helpers bound to a transaction
	pending *invalidationQueue
}

// NewCacheHelper creates a new cache helper instance
func NewCacheHelper(client *redis.Client, config CacheConfig) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// CacheConfig defines cache configuration for different data types
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Poll definitions change rarely but view counters bump them often
	PollCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "poll:",
	}

	PostCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "post:",
	}

	// Catalog data is edited from the admin panel only
	CatalogCacheConfig = CacheConfig{
		TTL:    30 * time.Minute,
		Prefix: "catalog:",
	}

	SettingCacheConfig = CacheConfig{
		TTL:    30 * time.Minute,
		Prefix: "setting:",
	}

	StatsCacheConfig = CacheConfig{
		TTL:    time.Minute,
		Prefix: "stats:",
	}
)

// generationTTL outlives any fetch a reader can have in flight
const generationTTL = time.Hour

// setIfGeneration stores the value only while neither the key generation nor the prefix generation moved
var setIfGeneration = redis.NewScript(`
local function gen(key)
	local v = redis.call('GET', key)
	if v then return v end
	return ''
end
if gen(KEYS[2]) ~= ARGV[1] or gen(KEYS[3]) ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[3], 'PX', ARGV[4])
return 1
`)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// TTL is the default expiry for this helper
func (c *CacheHelper) TTL() time.Duration {
	return c.ttl
}

// Enabled reports whether a redis client is configured
func (c *CacheHelper) Enabled() bool {
	return c != nil && c.client != nil
}

// GetCacheKey generates a cache key with prefix
func (c *CacheHelper) GetCacheKey(key string) string {
	return c.prefix + key
}

func (c *CacheHelper) generationKey(key string) string {
	return "gen:" + c.GetCacheKey(key)
}

func (c *CacheHelper) prefixGenerationKey() string {
	return "gen:" + c.prefix
}

// generations reads the key and prefix generations a later guarded write must still match
func (c *CacheHelper) generations(ctx context.Context, key string) (string, string, error) {
	values, err := c.client.MGet(ctx, c.generationKey(key), c.prefixGenerationKey()).Result()
	if err != nil {
		return "", "", err
	}
	return generationString(values[0]), generationString(values[1]), nil
}

func generationString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Get retrieves and unmarshals data from cache. Transaction-bound helpers always miss.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() || c.pending != nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache; ttl <= 0 uses the helper default
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() || c.pending != nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, c.GetCacheKey(key), data, ttl).Err()
}

// setGuarded stores the value unless an invalidation ran after the generations were read
func (c *CacheHelper) setGuarded(ctx context.Context, key string, value interface{}, keyGen, prefixGen string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	keys := []string{c.GetCacheKey(key), c.generationKey(key), c.prefixGenerationKey()}
	return setIfGeneration.Run(ctx, c.client, keys, keyGen, prefixGen, data, c.ttl.Milliseconds()).Err()
}

// Delete removes keys from cache and bumps their generations so in-flight reads do not restore them
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	if c.pending != nil {
		c.pending.add(invalidation{helper: c.live(), keys: keys})
		return nil
	}

	cacheKeys := make([]string, len(keys))
	pipe := c.client.TxPipeline()
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
		pipe.Incr(ctx, c.generationKey(key))
		pipe.Expire(ctx, c.generationKey(key), generationTTL)
	}
	pipe.Del(ctx, cacheKeys...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// Exists checks if a key exists in cache
func (c *CacheHelper) Exists(ctx context.Context, key string) (bool, error) {
	if !c.Enabled() {
		return false, ErrCacheNotAvailable
	}

	count, err := c.client.Exists(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return count > 0, nil
}

// InvalidatePattern removes all keys matching a pattern using SCAN instead of KEYS
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if !c.Enabled() {
		return nil
	}
	if c.pending != nil {
		c.pending.add(invalidation{helper: c.live(), pattern: pattern})
		return nil
	}

	// Misses under this prefix may be fetching keys the scan cannot see yet
	genPipe := c.client.TxPipeline()
	genPipe.Incr(ctx, c.prefixGenerationKey())
	genPipe.Expire(ctx, c.prefixGenerationKey(), generationTTL)
	if _, err := genPipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache generation bump error: %w", err)
	}

	fullPattern := c.GetCacheKey(pattern)
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan pattern error: %w", err)
		}
		keys = append(keys, scanKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		pipe.Del(ctx, keys[i:end]...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache pipeline delete error: %w", err)
	}

	return nil
}

// CacheOrExecute implements the cache-aside pattern. A cache failure never fails the read.
// The fetched value is written back only if no invalidation of the key ran since the miss.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	cacheable := c.Enabled() && c.pending == nil
	var keyGen, prefixGen string
	if cacheable {
		if keyGen, prefixGen, err = c.generations(ctx, key); err != nil {
			slog.WarnContext(ctx, "Cache generation read error, skipping write-back", "error", err, "key", key)
			cacheable = false
		}
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	if cacheable {
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		if err := c.setGuarded(setCtx, key, value, keyGen, prefixGen); err != nil {
			slog.ErrorContext(ctx, "Cache set error", "error", err, "key", key)
		}
		cancel()
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	return json.Unmarshal(data, dest)
}

// live returns a helper for the same prefix that applies invalidations immediately
func (c *CacheHelper) live() *CacheHelper {
	return &CacheHelper{client: c.client, prefix: c.prefix, ttl: c.ttl}
}

func (c *CacheHelper) deferred(q *invalidationQueue) *CacheHelper {
	return &CacheHelper{client: c.client, prefix: c.prefix, ttl: c.ttl, pending: q}
}

type invalidation struct {
	helper  *CacheHelper
	keys    []string
	pattern string
}

// invalidationQueue collects the invalidations issued inside a transaction
type invalidationQueue struct {
	mu    sync.Mutex
	items []invalidation
}

func (q *invalidationQueue) add(item invalidation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

func (q *invalidationQueue) drain() []invalidation {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// CacheManager manages multiple cache helpers
type CacheManager struct {
	client  *redis.Client
	pending *invalidationQueue

	Poll    *CacheHelper
	Post    *CacheHelper
	Catalog *CacheHelper
	Setting *CacheHelper
	Stats   *CacheHelper
}

// NewCacheManager creates cache manager with all cache helpers; a nil client disables caching
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:  client,
		Poll:    NewCacheHelper(client, PollCacheConfig),
		Post:    NewCacheHelper(client, PostCacheConfig),
		Catalog: NewCacheHelper(client, CatalogCacheConfig),
		Setting: NewCacheHelper(client, SettingCacheConfig),
		Stats:   NewCacheHelper(client, StatsCacheConfig),
	}
}

// Deferred returns a manager for use inside a database transaction. Its reads bypass the cache
// and its invalidations are held until Flush, which the caller runs after commit.
// A manager that is already deferred is returned as is.
func (cm *CacheManager) Deferred() *CacheManager {
	if cm.pending != nil {
		return cm
	}
	q := &invalidationQueue{}
	return &CacheManager{
		client:  cm.client,
		pending: q,
		Poll:    cm.Poll.deferred(q),
		Post:    cm.Post.deferred(q),
		Catalog: cm.Catalog.deferred(q),
		Setting: cm.Setting.deferred(q),
		Stats:   cm.Stats.deferred(q),
	}
}

// IsDeferred reports whether invalidations are being held for a transaction
func (cm *CacheManager) IsDeferred() bool {
	return cm.pending != nil
}

// Flush applies the held invalidations. It is a no-op on a live manager.
func (cm *CacheManager) Flush(ctx context.Context) {
	if cm.pending == nil {
		return
	}
	for _, item := range cm.pending.drain() {
		if item.pattern != "" {
			SafeInvalidatePattern(ctx, item.helper, item.pattern)
			continue
		}
		SafeDelete(ctx, item.helper, item.keys...)
	}
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}

	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}
