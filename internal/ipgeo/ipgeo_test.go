package ipgeo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcom-dev/chronos/internal/models"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{baseURL: srv.URL, httpClient: srv.Client()}
}

func TestLocate_SuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(response{
			City: "Oslo", CountryCode: "NO", CountryName: "Norway",
			Latitude: 59.9139, Longitude: 10.7522, Timezone: "Europe/Oslo",
		})
	}))
	defer srv.Close()

	loc, err := newTestClient(t, srv).Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Source != models.SourceIP {
		t.Errorf("expected source IP, got %v", loc.Source)
	}
	if loc.Confidence != Confidence {
		t.Errorf("expected confidence %v, got %v", Confidence, loc.Confidence)
	}
	if loc.Point.Lat != 59.9139 {
		t.Errorf("unexpected latitude: %v", loc.Point.Lat)
	}
}

func TestLocate_ProviderErrorIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(response{Error: true, Reason: "reserved range"})
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Locate(context.Background())
	if err == nil {
		t.Fatal("expected an error for a provider-reported failure")
	}
}

func TestLocate_ServerErrorMapsToServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Locate(context.Background())
	if err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}
