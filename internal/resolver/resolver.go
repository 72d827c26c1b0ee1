// Package resolver orchestrates the §4.7 fallback chain: normalized
// query parsing, then Cache, Dataset, Geocoder, and IP collaborators in
// order, stopping at first success and never silently resolving an
// ambiguous query.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ringsaturn/tzf"
	tzfrelite "github.com/ringsaturn/tzf-rel-lite"

	"github.com/jcom-dev/chronos/internal/cache"
	"github.com/jcom-dev/chronos/internal/geo"
	"github.com/jcom-dev/chronos/internal/geocoder"
	"github.com/jcom-dev/chronos/internal/ipgeo"
	"github.com/jcom-dev/chronos/internal/locerr"
	"github.com/jcom-dev/chronos/internal/models"
)

// scoreMargin is the minimum lead the top geocoder candidate needs over
// the runner-up to be accepted outright (§4.7 step 4: "e.g., 0.2").
const scoreMargin = 0.2

// timezoneFinder is the subset of tzf.F this package depends on, so
// tests can supply a stub without loading the embedded tz-boundary data.
type timezoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

// Resolver composes the location-resolution collaborators.
type Resolver struct {
	cache    *cache.Cache
	geocoder *geocoder.Client
	ip       *ipgeo.Client
	tzFinder timezoneFinder
}

// New wires the default collaborators, loading the embedded point-in-
// timezone-polygon data (tzf-rel-lite) used to resolve a timezone for
// bare-coordinate locations and geocoder candidates. IP-derived
// locations keep the timezone the IP service reports.
func New(c *cache.Cache, gc *geocoder.Client, ip *ipgeo.Client) (*Resolver, error) {
	finder, err := tzf.NewFinderFromCompressed(tzfrelite.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone finder: %w", err)
	}
	return &Resolver{cache: c, geocoder: gc, ip: ip, tzFinder: finder}, nil
}

// NewWithFinder wires a Resolver with an explicit timezoneFinder, used
// by tests to avoid loading the real tz-boundary dataset.
func NewWithFinder(c *cache.Cache, gc *geocoder.Client, ip *ipgeo.Client, finder timezoneFinder) *Resolver {
	return &Resolver{cache: c, geocoder: gc, ip: ip, tzFinder: finder}
}

var manualCoordsRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)$`)

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q))), " ")
}

func parseManualCoords(normalized string) (models.GeoPoint, bool) {
	m := manualCoordsRe.FindStringSubmatch(normalized)
	if m == nil {
		return models.GeoPoint{}, false
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lon, errLon := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLon != nil {
		return models.GeoPoint{}, false
	}
	point := models.GeoPoint{Lat: lat, Lon: lon}
	if !point.Valid() {
		return models.GeoPoint{}, false
	}
	return point, true
}

// Resolve runs the fallback chain for query (optionally narrowed by an
// ISO alpha-2 countryHint), returning a single ResolvedLocation or a
// *locerr.Error describing why resolution failed or is ambiguous. An
// empty query means "auto-detect": skip straight to IP geolocation.
func (r *Resolver) Resolve(ctx context.Context, query, countryHint string) (models.ResolvedLocation, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return r.resolveByIP(ctx)
	}

	if point, ok := parseManualCoords(normalized); ok {
		return models.ResolvedLocation{
			Name:          normalized,
			Point:         point,
			TZ:            r.tzFinder.GetTimezoneName(point.Lon, point.Lat),
			Source:        models.SourceManualCoord,
			Confidence:    1.0,
			DisplayCoords: normalized,
		}, nil
	}

	if loc, ok := r.cache.Get(ctx, normalized); ok {
		return loc, nil
	}

	if loc, ok, err := r.resolveByDataset(normalized, countryHint); err != nil {
		return models.ResolvedLocation{}, err
	} else if ok {
		r.cache.Put(ctx, normalized, loc)
		return loc, nil
	}

	loc, err := r.resolveByGeocoder(ctx, query, countryHint)
	if err != nil {
		return models.ResolvedLocation{}, err
	}
	r.cache.Put(ctx, normalized, loc)
	return loc, nil
}

func recordToLocation(rec geo.Record, confidence float64) models.ResolvedLocation {
	return models.ResolvedLocation{
		Name:        strings.ToLower(rec.CanonicalName),
		Country:     rec.CountryName,
		CountryCode: rec.CountryCode,
		Point:       models.GeoPoint{Lat: rec.Lat, Lon: rec.Lon},
		TZ:          rec.TZ,
		Source:      models.SourceBuiltIn,
		Confidence:  confidence,
	}
}

// resolveByDataset implements §4.7 step 3: a single dataset match wins
// outright; a multi-match narrows to a single record if exactly one
// matches the caller's country hint, otherwise it defers to the
// Geocoder (ok=false, err=nil) rather than guessing.
func (r *Resolver) resolveByDataset(normalized, countryHint string) (models.ResolvedLocation, bool, error) {
	records := geo.Lookup(normalized)
	switch len(records) {
	case 0:
		return models.ResolvedLocation{}, false, nil
	case 1:
		return recordToLocation(records[0], 0.95), true, nil
	}

	if countryHint == "" {
		return models.ResolvedLocation{}, false, nil
	}
	var matched []geo.Record
	for _, rec := range records {
		if strings.EqualFold(rec.CountryCode, countryHint) {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 1 {
		return recordToLocation(matched[0], 0.95), true, nil
	}
	return models.ResolvedLocation{}, false, nil
}

// geocoderConfidenceCeiling scales a geocoder candidate's combined score
// (0..1) into the Cache >= BuiltIn >= Geocoder >= IP confidence band
// (models.ResolvedLocation.DecayOK's invariant): a perfect-score
// candidate is still less trusted than a dataset hit.
const geocoderConfidenceCeiling = 0.8

func candidateToLocation(c geocoder.Candidate) models.ResolvedLocation {
	return models.ResolvedLocation{
		Name:        strings.ToLower(c.Name),
		Country:     c.CountryName,
		CountryCode: c.CountryCode,
		Point:       models.GeoPoint{Lat: c.Lat(), Lon: c.Lon()},
		TZ:          "", // resolved by caller once a coordinate is settled
		Source:      models.SourceGeocoder,
		Confidence:  c.Score * geocoderConfidenceCeiling,
	}
}

// resolveByGeocoder implements §4.7 step 4: fetch candidates, accept the
// top one outright if its score clears the runner-up by scoreMargin;
// otherwise, if at least two candidates span distinct country codes,
// report Ambiguous rather than silently picking.
func (r *Resolver) resolveByGeocoder(ctx context.Context, query, countryHint string) (models.ResolvedLocation, error) {
	candidates, err := r.geocoder.Geocode(ctx, query, countryHint)
	if err != nil {
		return models.ResolvedLocation{}, err
	}
	if len(candidates) == 0 {
		return models.ResolvedLocation{}, locerr.NotFound("no geocoding results for %q", query)
	}

	loc := func(c geocoder.Candidate) models.ResolvedLocation {
		l := candidateToLocation(c)
		l.TZ = r.tzFinder.GetTimezoneName(l.Point.Lon, l.Point.Lat)
		return l
	}

	if len(candidates) == 1 {
		return loc(candidates[0]), nil
	}

	top, runnerUp := candidates[0], candidates[1]
	if top.Score-runnerUp.Score > scoreMargin {
		return loc(top), nil
	}

	countries := map[string]bool{}
	for _, c := range candidates {
		countries[strings.ToLower(c.CountryCode)] = true
	}
	if len(countries) >= 2 {
		options := make([]locerr.Candidate, 0, len(candidates))
		for _, c := range candidates {
			options = append(options, locerr.Candidate{
				Name: c.Name, Country: c.CountryName, CountryCode: c.CountryCode,
				Lat: c.Lat(), Lon: c.Lon(), TZ: r.tzFinder.GetTimezoneName(c.Lon(), c.Lat()),
			})
		}
		return models.ResolvedLocation{}, locerr.Ambiguous(query, options)
	}

	return loc(top), nil
}

func (r *Resolver) resolveByIP(ctx context.Context) (models.ResolvedLocation, error) {
	return r.ip.Locate(ctx)
}
