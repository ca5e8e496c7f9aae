package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hublocator/config"
	"hublocator/graphmodel"
	"hublocator/provider"
)

func buildQueryTestGraph() *graphmodel.Graph {
	g := graphmodel.NewGraph()
	a := g.UpsertHub("HUBA")
	a.Lat, a.Lon = 51.50, -0.10
	a.PrimaryNaptanID = "940GZZLUAAA"
	b := g.UpsertHub("HUBB")
	b.Lat, b.Lon = 51.52, -0.14
	b.PrimaryNaptanID = "940GZZLUBBB"
	c := g.UpsertHub("HUBC")
	c.Lat, c.Lon = 51.51, -0.12
	c.PrimaryNaptanID = "940GZZLUCCC"

	ac := graphmodel.NewLineEdge("HUBA", "HUBC", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	ac.SetWeight(5)
	g.UpsertEdge(ac)
	bc := graphmodel.NewLineEdge("HUBB", "HUBC", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	bc.SetWeight(6)
	g.UpsertEdge(bc)

	return g
}

func TestRunReturnsDiagnosticWhenNoCandidateSurvivesEstimate(t *testing.T) {
	g := graphmodel.NewGraph()
	a := g.UpsertHub("HUBA")
	a.Lat, a.Lon = 51.50, -0.10
	b := g.UpsertHub("HUBB")
	b.Lat, b.Lon = 51.52, -0.14
	// no edges at all: HUBC (the only other hub) is unreachable from both.
	c := g.UpsertHub("HUBC")
	c.Lat, c.Lon = 51.51, -0.12

	users := []UserEntry{
		{StartHub: "HUBA", WalkMinutes: 2},
		{StartHub: "HUBB", WalkMinutes: 3},
	}
	cfg := Config{
		ChangePenaltyMinutes: 5, EllipseExpansion: 1.2, HullBufferFraction: 0.005,
		CoverageFraction: 0.70, TopKRefined: 10, AlternativesReturned: 5,
	}

	result, err := Run(context.Background(), g, nil, users, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Best != nil {
		t.Fatalf("expected no viable candidate, got %+v", result.Best)
	}
}

func TestRunRanksByRefinedTotal(t *testing.T) {
	g := buildQueryTestGraph()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(provider.JourneyResponse{Journeys: []struct {
			Duration int `json:"duration"`
		}{{Duration: 5}}})
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.ProviderBaseURL = srv.URL
	cfg.Retry = config.RetryConfig{MaxAttempts: 1, BaseDelayMS: 1, MaxDelayMS: 5, JitterFactor: 0}
	client := provider.NewClient(cfg, "tok", nil)
	defer client.Close()

	users := []UserEntry{
		{StartHub: "HUBA", WalkMinutes: 1, StartStationID: "940GZZLUAAA"},
		{StartHub: "HUBB", WalkMinutes: 1, StartStationID: "940GZZLUBBB"},
	}
	qcfg := Config{
		ChangePenaltyMinutes: 5, EllipseExpansion: 1.2, HullBufferFraction: 0.005,
		CoverageFraction: 1.0, TopKRefined: 10, AlternativesReturned: 5,
	}

	result, err := Run(context.Background(), g, client, users, qcfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Best == nil {
		t.Fatalf("expected a best candidate")
	}
	if result.Best.Hub.ID != "HUBC" {
		t.Fatalf("expected HUBC as the only reachable candidate, got %s", result.Best.Hub.ID)
	}
	// two users, both journeys stubbed at 5 minutes + 1 minute walk each = 12 total
	if result.Best.TotalRefined != 12 {
		t.Fatalf("expected total_refined 12, got %f", result.Best.TotalRefined)
	}
}
