package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"onecore/internal/platform/metrics"
	"onecore/pkg/platform/staleguard"
	"onecore/pkg/requestcontext"
)

const DefaultTTL = 5 * time.Minute

// Cache pairs a Store with per-key staleness guards.
type Cache struct {
	store   Store
	guards  *staleguard.Keyed
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		guards: staleguard.NewKeyed(),
		ttl:    DefaultTTL,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached value for key, or calls fill and caches its
// result. Cache failures degrade to calling fill; fill errors are returned
// as is and never cached.
func Load[T any](ctx context.Context, c *Cache, key string, fill func(context.Context) (T, error)) (T, error) {
	if raw, err := c.store.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.metrics.IncCacheLookup("hit")
			return v, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cache entry",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
		)
		c.metrics.IncCacheLookup("error")
	} else if errors.Is(err, ErrNotFound) {
		c.metrics.IncCacheLookup("miss")
	} else {
		c.metrics.IncCacheLookup("error")
		c.logger.WarnContext(ctx, "cache read failed",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}

	stale, done := c.guards.Begin(key)
	defer done()
	v, err := fill(ctx)
	if err != nil {
		return v, err
	}
	if stale() {
		c.metrics.IncCacheStaleWrite()
		c.logger.DebugContext(ctx, "skipping superseded cache fill",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
		)
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return v, nil
}

// Invalidate supersedes in-flight fills for keys and removes their entries.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	for _, k := range keys {
		c.guards.Invalidate(k)
	}
	if err := c.store.Delete(context.WithoutCancel(ctx), keys...); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed",
			"keys", keys,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// Key builders for the cached property tree reads.

func CompaniesKey() string { return "companies" }

func PropertiesKey(companyCode string) string { return "properties:" + companyCode }

func BuildingsKey(propertyCode string) string { return "buildings:" + propertyCode }

func ComponentsKey(roomID string) string { return "components:room:" + roomID }
