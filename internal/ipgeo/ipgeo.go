// Package ipgeo reverse-geolocates the caller's IP address as the
// Resolver's last-resort fallback (§4.7 step 5), used only when the
// caller supplied no query at all ("auto-detect").
package ipgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jcom-dev/chronos/internal/locerr"
	"github.com/jcom-dev/chronos/internal/models"
)

const requestTimeout = 5 * time.Second

// Confidence is the canonical confidence recorded for any IP-derived
// location, per §4.7 step 5 ("~0.3").
const Confidence = 0.3

// Client reverse-geolocates by IP via an external HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client from the IPGEO_BASE_URL environment variable,
// defaulting to a public best-effort IP geolocation endpoint.
func New() *Client {
	base := os.Getenv("IPGEO_BASE_URL")
	if base == "" {
		base = "https://ipapi.co"
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type response struct {
	City        string  `json:"city"`
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	Error       bool    `json:"error"`
	Reason      string  `json:"reason"`
}

// Locate reverse-geolocates the caller's own outbound IP (the service
// determines the IP from the connecting socket, so no address is sent).
func (c *Client) Locate(ctx context.Context) (models.ResolvedLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := c.baseURL + "/json/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.ResolvedLocation{}, locerr.InvalidInput("malformed ip-geo request: %v", err)
	}
	req.Header.Set("User-Agent", "polaris-chronos/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("ip geolocation request failed", "error", err)
		return models.ResolvedLocation{}, locerr.NetworkErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ResolvedLocation{}, locerr.ServiceUnavailable("ip geolocation returned status %d", resp.StatusCode)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return models.ResolvedLocation{}, fmt.Errorf("failed to decode ip geolocation response: %w", err)
	}
	if r.Error {
		return models.ResolvedLocation{}, locerr.NotFound("ip geolocation failed: %s", r.Reason)
	}

	point := models.GeoPoint{Lat: r.Latitude, Lon: r.Longitude}
	if !point.Valid() {
		return models.ResolvedLocation{}, locerr.ServiceUnavailable("ip geolocation returned out-of-range coordinates")
	}

	return models.ResolvedLocation{
		Name:        strings.ToLower(r.City),
		Country:     r.CountryName,
		CountryCode: r.CountryCode,
		Point:       point,
		TZ:          r.Timezone,
		Source:      models.SourceIP,
		Confidence:  Confidence,
	}, nil
}
