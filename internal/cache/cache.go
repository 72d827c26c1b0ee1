// Package cache provides Redis-backed persistence for the Resolver's
// normalized_query -> ResolvedLocation mapping, per §4.6: a 30-day TTL,
// a schema version tag for forward compatibility, and corrupt-or-missing
// reads treated as plain misses rather than propagated as errors.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcom-dev/chronos/internal/models"
)

// Cache is a Redis-backed location cache.
type Cache struct {
	client   *redis.Client
	redisURL string // for logging purposes
}

// schemaVersion is bumped whenever entry's on-wire shape changes
// incompatibly; a mismatched version is treated as a miss rather than
// an unmarshal error, per §4.6's forward-compatibility requirement.
const schemaVersion = 1

// entry is the on-wire cache record: the resolved location plus a schema
// version used to validate it and the time it was cached, which is only
// logged on a hit; expiry is left to the Redis TTL.
type entry struct {
	SchemaVersion int                     `json:"schema_version"`
	Location      models.ResolvedLocation `json:"location"`
	CachedAt      time.Time               `json:"cached_at"`
}

// TTL is the default location-cache lifetime (§4.6: "default 30 days").
const TTL = 30 * 24 * time.Hour

func keyFor(normalizedQuery string) string {
	return fmt.Sprintf("chronos:location:%s", normalizedQuery)
}

// New creates a Redis-backed Cache from the REDIS_URL environment
// variable, defaulting to a local instance, and verifies connectivity
// with a bounded ping before returning.
func New() (*Cache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	provider := "Redis"
	if strings.Contains(redisURL, "upstash.io") {
		provider = "Upstash Redis"
	}
	slog.Info("location cache connection established", "provider", provider, "host", opt.Addr)

	return &Cache{client: client, redisURL: redisURL}, nil
}

// NewWithClient wraps an existing Redis client, used by tests against miniredis.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the cached ResolvedLocation for normalizedQuery. A miss —
// whether because no entry exists, it expired, it failed to unmarshal,
// or it carries an unrecognized schema version — reports ok=false and
// no error; per §4.6, a corrupt or unreadable cache behaves as a
// miss, never a failure the caller must handle.
func (c *Cache) Get(ctx context.Context, normalizedQuery string) (loc models.ResolvedLocation, ok bool) {
	key := keyFor(normalizedQuery)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		slog.Debug("location cache miss", "key", key)
		return models.ResolvedLocation{}, false
	}
	if err != nil {
		slog.Error("location cache read error", "key", key, "error", err)
		return models.ResolvedLocation{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Warn("location cache entry unreadable, treating as miss", "key", key, "error", err)
		return models.ResolvedLocation{}, false
	}
	if e.SchemaVersion != schemaVersion {
		slog.Debug("location cache entry schema mismatch, treating as miss", "key", key, "found_version", e.SchemaVersion)
		return models.ResolvedLocation{}, false
	}

	e.Location.Source = models.SourceCache
	slog.Debug("location cache hit", "key", key, "cached_at", e.CachedAt.Format(time.RFC3339))
	return e.Location, true
}

// Put replaces any prior entry for normalizedQuery with loc, stamped
// with the current time and a fresh TTL. Write failures are logged but
// never returned as an error the resolution path must abort on.
func (c *Cache) Put(ctx context.Context, normalizedQuery string, loc models.ResolvedLocation) {
	key := keyFor(normalizedQuery)
	e := entry{SchemaVersion: schemaVersion, Location: loc, CachedAt: time.Now()}

	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("location cache marshal error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, TTL).Err(); err != nil {
		slog.Error("location cache write error", "key", key, "error", err)
		return
	}
	slog.Debug("location cache set", "key", key, "ttl", TTL)
}

// Invalidate removes a single cached entry, e.g. after an operator
// flags a stale dataset/geocoder result.
func (c *Cache) Invalidate(ctx context.Context, normalizedQuery string) error {
	return c.client.Del(ctx, keyFor(normalizedQuery)).Err()
}
