// Package geocoder forward-geocodes free-text location queries via an
// external Nominatim-compatible HTTP service (§4.5), scoring and
// ranking the candidates it returns.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"golang.org/x/sync/singleflight"

	"github.com/jcom-dev/chronos/internal/locerr"
)

func normalizeForMatch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func equalFoldCountry(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// requestTimeout bounds every outbound geocode call (§4.5: "~5s").
const requestTimeout = 5 * time.Second

// Candidate is one scored geocoding result.
type Candidate struct {
	Name          string
	DisplayAddr   string
	CountryCode   string
	CountryName   string
	Point         orb.Point // [lon, lat], matching orb's GeoJSON-style convention
	Importance    float64   // provider-supplied, normalized to [0,1]
	Score         float64   // combined score after boosts, descending order
}

// Lat/Lon are convenience accessors over the orb.Point convention.
func (c Candidate) Lat() float64 { return c.Point[1] }
func (c Candidate) Lon() float64 { return c.Point[0] }

// Client forward-geocodes queries against a Nominatim-compatible
// endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

// New builds a Client from the GEOCODER_BASE_URL environment variable,
// defaulting to the public OpenStreetMap Nominatim instance.
func New() *Client {
	base := os.Getenv("GEOCODER_BASE_URL")
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Importance  float64 `json:"importance"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		CountryCode string `json:"country_code"`
		Country     string `json:"country"`
	} `json:"address"`
}

// Geocode forward-geocodes query, optionally filtered by an ISO alpha-2
// countryHint, returning candidates ordered by combined score
// descending. Concurrent identical (query, countryHint) pairs are
// collapsed into a single outbound request.
func (c *Client) Geocode(ctx context.Context, query, countryHint string) ([]Candidate, error) {
	reqID := uuid.NewString()
	key := query + "|" + countryHint

	result, err, _ := c.group.Do(key, func() (any, error) {
		return c.geocode(ctx, query, countryHint, reqID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Candidate), nil
}

func (c *Client) geocode(ctx context.Context, query, countryHint, reqID string) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "10")
	if countryHint != "" {
		q.Set("countrycodes", countryHint)
	}

	endpoint := c.baseURL + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, locerr.InvalidInput("malformed geocode request: %v", err)
	}
	req.Header.Set("User-Agent", "polaris-chronos/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("geocoder request failed", "request_id", reqID, "query", query, "error", err)
		return nil, locerr.NetworkErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("geocoder returned non-200", "request_id", reqID, "status", resp.StatusCode)
		return nil, locerr.ServiceUnavailable("geocoder returned status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if len(raw) == 0 {
		return nil, locerr.NotFound("no geocoding results for %q", query)
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		name := r.Address.City
		if name == "" {
			name = r.Address.Town
		}
		if name == "" {
			name = r.Address.Village
		}
		if name == "" {
			name = r.DisplayName
		}
		candidates = append(candidates, Candidate{
			Name:        name,
			DisplayAddr: r.DisplayName,
			CountryCode: r.Address.CountryCode,
			CountryName: r.Address.Country,
			Point:       orb.Point{lon, lat},
			Importance:  r.Importance,
		})
	}

	score(candidates, query, countryHint)
	slog.Debug("geocode resolved", "request_id", reqID, "query", query, "candidates", len(candidates))
	return candidates, nil
}

// score combines provider importance with an exact-alias boost (the
// candidate's name matches the query verbatim, case-insensitively) and
// a country-hint boost (the caller supplied an ISO alpha-2 hint and the
// candidate matches it), per §4.5, then sorts descending.
func score(candidates []Candidate, query, countryHint string) {
	const (
		exactAliasBoost  = 0.15
		countryHintBoost = 0.10
	)

	normQuery := normalizeForMatch(query)
	for i := range candidates {
		s := candidates[i].Importance
		if normalizeForMatch(candidates[i].Name) == normQuery {
			s += exactAliasBoost
		}
		if countryHint != "" && equalFoldCountry(candidates[i].CountryCode, countryHint) {
			s += countryHintBoost
		}
		if s > 1 {
			s = 1
		}
		candidates[i].Score = s
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
