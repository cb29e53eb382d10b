package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const portfolioCachePrefix = "folio:portfolio:"

// PortfolioCache stores rendered public portfolio views keyed by slug.
type PortfolioCache interface {
	Get(ctx context.Context, slug string) (*PublicPortfolio, bool)
	Set(ctx context.Context, slug string, view *PublicPortfolio)
	Invalidate(ctx context.Context, slugs ...string)
	Mode() string
	Close() error
}

// NewPortfolioCache returns a redis backed cache when redis is enabled and
// reachable, otherwise a cache that never hits.
func NewPortfolioCache(ctx context.Context, redisCfg *config.RedisConfig, cacheCfg *config.CacheConfig) PortfolioCache {
	if !redisCfg.Enabled || cacheCfg.PortfolioTTLSeconds <= 0 {
		return NoopPortfolioCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("[PortfolioCache] Redis unavailable, caching disabled: %v", err)
		_ = client.Close()
		return NoopPortfolioCache{}
	}

	logger.Infof("[PortfolioCache] Redis cache enabled at %s", redisCfg.Addr)
	return NewRedisPortfolioCache(client, time.Duration(cacheCfg.PortfolioTTLSeconds)*time.Second)
}

// RedisPortfolioCache keeps JSON encoded views with a TTL.
type RedisPortfolioCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisPortfolioCache(client redis.UniversalClient, ttl time.Duration) *RedisPortfolioCache {
	return &RedisPortfolioCache{client: client, ttl: ttl}
}

func (c *RedisPortfolioCache) Get(ctx context.Context, slug string) (*PublicPortfolio, bool) {
	data, err := c.client.Get(ctx, portfolioCachePrefix+slug).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warnf("[PortfolioCache] get %s failed: %v", slug, err)
		}
		metrics.IncCacheLookup(false)
		return nil, false
	}

	var view PublicPortfolio
	if err := json.Unmarshal(data, &view); err != nil {
		logger.Warnf("[PortfolioCache] corrupt entry for %s: %v", slug, err)
		metrics.IncCacheLookup(false)
		return nil, false
	}
	metrics.IncCacheLookup(true)
	return &view, true
}

func (c *RedisPortfolioCache) Set(ctx context.Context, slug string, view *PublicPortfolio) {
	data, err := json.Marshal(view)
	if err != nil {
		logger.Warnf("[PortfolioCache] encode %s failed: %v", slug, err)
		return
	}
	if err := c.client.Set(ctx, portfolioCachePrefix+slug, data, c.ttl).Err(); err != nil {
		logger.Warnf("[PortfolioCache] set %s failed: %v", slug, err)
	}
}

func (c *RedisPortfolioCache) Invalidate(ctx context.Context, slugs ...string) {
	if len(slugs) == 0 {
		return
	}
	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = portfolioCachePrefix + slug
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warnf("[PortfolioCache] invalidate %v failed: %v", slugs, err)
	}
}

func (c *RedisPortfolioCache) Mode() string { return "redis" }

// Close releases the redis connection pool.
func (c *RedisPortfolioCache) Close() error { return c.client.Close() }

// NoopPortfolioCache is used when redis is disabled.
type NoopPortfolioCache struct{}

func (NoopPortfolioCache) Get(context.Context, string) (*PublicPortfolio, bool) {
	metrics.IncCacheLookup(false)
	return nil, false
}

func (NoopPortfolioCache) Set(context.Context, string, *PublicPortfolio) {}

func (NoopPortfolioCache) Invalidate(context.Context, ...string) {}

func (NoopPortfolioCache) Mode() string { return "none" }

func (NoopPortfolioCache) Close() error { return nil }
