// Package cache serves content descriptors from a two-tier read-through cache.
//
// Contents never change after creation, so entries are never invalidated;
// TTLs only bound memory. Concurrent misses for the same id collapse into a
// single store read.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"keepsake/internal/registry/metrics"
	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
)

const contentKeyPrefix = "keepsake:content:"

// ContentLoader reads a content from the source of truth.
type ContentLoader interface {
	FindContent(ctx context.Context, contentID id.ContentID) (*models.Content, error)
}

// ContentCache layers a per-process LRU over an optional shared Redis tier.
type ContentCache struct {
	loader  ContentLoader
	local   *expirable.LRU[id.ContentID, *models.Content]
	redis   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*ContentCache)

// WithRedis enables the shared tier.
func WithRedis(client *redis.Client) Option {
	return func(c *ContentCache) {
		c.redis = client
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *ContentCache) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *ContentCache) {
		c.logger = logger
	}
}

// New constructs a cache holding up to size contents for ttl.
func New(loader ContentLoader, size int, ttl time.Duration, opts ...Option) *ContentCache {
	c := &ContentCache{
		loader: loader,
		local:  expirable.NewLRU[id.ContentID, *models.Content](size, nil, ttl),
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindContent returns a copy of the content, loading it on a miss. Loader
// errors (including sentinel.ErrNotFound) pass through unchanged and are not
// cached.
func (c *ContentCache) FindContent(ctx context.Context, contentID id.ContentID) (*models.Content, error) {
	if content, ok := c.local.Get(contentID); ok {
		c.metrics.ObserveCacheLookup("local", true)
		return copyContent(content), nil
	}
	c.metrics.ObserveCacheLookup("local", false)

	v, err, _ := c.group.Do(contentID.String(), func() (any, error) {
		if content, ok := c.fromRedis(ctx, contentID); ok {
			c.local.Add(contentID, content)
			return content, nil
		}
		content, err := c.loader.FindContent(ctx, contentID)
		if err != nil {
			return nil, err
		}
		c.local.Add(contentID, content)
		c.toRedis(ctx, content)
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return copyContent(v.(*models.Content)), nil
}

func (c *ContentCache) fromRedis(ctx context.Context, contentID id.ContentID) (*models.Content, bool) {
	if c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, contentKeyPrefix+contentID.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.WarnContext(ctx, "content cache read failed", "content_id", contentID, "error", err)
		}
		c.metrics.ObserveCacheLookup("redis", false)
		return nil, false
	}
	var content models.Content
	if err := json.Unmarshal(raw, &content); err != nil {
		c.metrics.ObserveCacheLookup("redis", false)
		return nil, false
	}
	c.metrics.ObserveCacheLookup("redis", true)
	return &content, true
}

// toRedis is best effort: the store stays authoritative.
func (c *ContentCache) toRedis(ctx context.Context, content *models.Content) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, contentKeyPrefix+content.ID.String(), raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "content cache write failed", "content_id", content.ID, "error", err)
	}
}

func copyContent(c *models.Content) *models.Content {
	cp := *c
	return &cp
}
