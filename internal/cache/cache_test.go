package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jcom-dev/chronos/internal/models"
)

// setupTestRedis creates a test Redis client using miniredis.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, mr
}

func TestCache_Get_MissWhenEmpty(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewWithClient(client)
	ctx := context.Background()

	_, ok := c.Get(ctx, "tokyo")
	if ok {
		t.Error("expected a miss on an empty cache")
	}
}

func TestCache_PutThenGet_RoundTripsAndTagsSourceCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewWithClient(client)
	ctx := context.Background()

	loc := models.ResolvedLocation{
		Name:       "Tokyo",
		Country:    "Japan",
		Point:      models.GeoPoint{Lat: 35.6762, Lon: 139.6503},
		TZ:         "Asia/Tokyo",
		Source:     models.SourceGeocoder,
		Confidence: 0.8,
	}
	c.Put(ctx, "tokyo", loc)

	got, ok := c.Get(ctx, "tokyo")
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if got.Name != loc.Name || got.Point != loc.Point || got.TZ != loc.TZ {
		t.Errorf("round-tripped location mismatch: got %+v, want fields from %+v", got, loc)
	}
	if got.Source != models.SourceCache {
		t.Errorf("expected source to be re-tagged Cache on read, got %v", got.Source)
	}
}

func TestCache_Get_ExpiredEntryIsAMiss(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewWithClient(client)
	ctx := context.Background()

	c.Put(ctx, "oslo", models.ResolvedLocation{Name: "Oslo"})
	mr.FastForward(TTL + time.Second)

	_, ok := c.Get(ctx, "oslo")
	if ok {
		t.Error("expected entry to have expired past its TTL")
	}
}

func TestCache_Get_CorruptEntryIsAMissNotAnError(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewWithClient(client)
	ctx := context.Background()

	if err := client.Set(ctx, keyFor("corrupt"), "not-json", TTL).Err(); err != nil {
		t.Fatalf("failed to seed corrupt entry: %v", err)
	}

	_, ok := c.Get(ctx, "corrupt")
	if ok {
		t.Error("expected corrupt entry to read as a miss")
	}
}

func TestCache_Get_WrongSchemaVersionIsAMiss(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewWithClient(client)
	ctx := context.Background()

	stale := `{"schema_version":999,"location":{"name":"Oslo"},"cached_at":"2020-01-01T00:00:00Z"}`
	if err := client.Set(ctx, keyFor("oslo"), stale, TTL).Err(); err != nil {
		t.Fatalf("failed to seed stale-schema entry: %v", err)
	}

	_, ok := c.Get(ctx, "oslo")
	if ok {
		t.Error("expected a schema-version mismatch to read as a miss")
	}
}

func TestCache_Put_ReplacesPriorEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewWithClient(client)
	ctx := context.Background()

	c.Put(ctx, "mecca", models.ResolvedLocation{Name: "Mecca", Confidence: 0.5})
	c.Put(ctx, "mecca", models.ResolvedLocation{Name: "Mecca", Confidence: 0.95})

	got, ok := c.Get(ctx, "mecca")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Confidence != 0.95 {
		t.Errorf("expected Put to replace prior entry, got confidence %v", got.Confidence)
	}
}
