package resolver

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jcom-dev/chronos/internal/cache"
	"github.com/jcom-dev/chronos/internal/geocoder"
	"github.com/jcom-dev/chronos/internal/ipgeo"
	"github.com/jcom-dev/chronos/internal/locerr"
)

type stubFinder struct{}

func (stubFinder) GetTimezoneName(lng, lat float64) string { return "Etc/UTC" }

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewWithClient(client)
	return NewWithFinder(c, geocoder.New(), ipgeo.New(), stubFinder{})
}

func TestResolve_ManualCoordsBypassesEverything(t *testing.T) {
	r := newTestResolver(t)
	loc, err := r.Resolve(context.Background(), "21.4225, 39.8262", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Source != "ManualCoords" {
		t.Errorf("expected ManualCoords source, got %v", loc.Source)
	}
	if loc.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", loc.Confidence)
	}
	if loc.Point.Lat != 21.4225 || loc.Point.Lon != 39.8262 {
		t.Errorf("unexpected point: %+v", loc.Point)
	}
}

func TestResolve_DatasetExactMatchBeatsGeocoder(t *testing.T) {
	r := newTestResolver(t)
	loc, err := r.Resolve(context.Background(), "Mecca", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Source != "BuiltIn" {
		t.Errorf("expected BuiltIn source from dataset, got %v", loc.Source)
	}
	if loc.Confidence != 0.95 {
		t.Errorf("expected dataset confidence 0.95, got %v", loc.Confidence)
	}
}

func TestResolve_CachesDatasetHitForSecondLookup(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "Mecca", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := r.Resolve(ctx, "Mecca", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Source != "Cache" {
		t.Errorf("expected second lookup to hit the cache, got %v", second.Source)
	}
	if second.Point != first.Point {
		t.Errorf("cached point mismatch: %+v vs %+v", second.Point, first.Point)
	}
}

func TestResolve_UnknownQueryPropagatesGeocoderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// Port 0 never accepts a connection, so the geocoder call fails
	// deterministically without depending on real network access.
	t.Setenv("GEOCODER_BASE_URL", "http://127.0.0.1:0")
	r := NewWithFinder(cache.NewWithClient(client), geocoder.New(), ipgeo.New(), stubFinder{})

	_, err = r.Resolve(context.Background(), "zzzznotrealzzzz", "")
	if err == nil {
		t.Fatal("expected an error for a query with no dataset match and an unreachable geocoder")
	}
	if kind, ok := locerr.KindOf(err); !ok || kind != locerr.KindNetworkError {
		t.Errorf("expected a NetworkError from the unreachable geocoder endpoint, got kind=%v ok=%v", kind, ok)
	}
}
