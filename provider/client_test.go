package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hublocator/config"
)

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.ProviderBaseURL = baseURL
	cfg.Retry = config.RetryConfig{MaxAttempts: 2, BaseDelayMS: 1, MaxDelayMS: 5, JitterFactor: 0}
	cfg.Concurrency = config.ConcurrencyConfig{Sequence: 16, StopsNear: 16, Timetable: 16, Journey: 16}
	return cfg
}

func TestClientJourneySameStationShortCircuits(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "tok", nil)
	defer c.Close()

	minutes, err := c.Journey(context.Background(), "940GZZLUEUS", "940GZZLUEUS", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != 0 {
		t.Fatalf("expected 0 minutes for same-station journey, got %d", minutes)
	}
	if called {
		t.Fatalf("expected no HTTP call for a same-station journey")
	}
}

func TestClientJourneyReturnsNoJourneyWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(JourneyResponse{Journeys: nil})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "tok", nil)
	defer c.Close()

	minutes, err := c.Journey(context.Background(), "A", "B", "walking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != NoJourney {
		t.Fatalf("expected NoJourney, got %d", minutes)
	}
}

func TestClientRetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(JourneyResponse{Journeys: []struct {
			Duration int `json:"duration"`
		}{{Duration: 12}}})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "tok", nil)
	defer c.Close()

	minutes, err := c.Journey(context.Background(), "A", "B", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != 12 {
		t.Fatalf("expected 12 minutes, got %d", minutes)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestClientStopsNearUnmarshalsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]StopPoint{
			{ID: "940GZZLUEUS", Name: "Euston", TopParentID: "HUBEUS"},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "tok", nil)
	defer c.Close()

	stops, err := c.StopsNear(context.Background(), 51.5, -0.1, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stops) != 1 || stops[0].HubIdentity() != "HUBEUS" {
		t.Fatalf("unexpected stops: %+v", stops)
	}
}

func TestClientAuthErrorIsNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "tok", nil)
	defer c.Close()

	_, err := c.Journey(context.Background(), "A", "B", "")
	if err == nil {
		t.Fatalf("expected an auth error")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt for an auth failure, got %d", attempts)
	}
}
