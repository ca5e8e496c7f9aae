package query

import (
	"testing"

	"hublocator/graphmodel"
)

func hubAt(g *graphmodel.Graph, id string, lat, lon float64) *graphmodel.Hub {
	h := g.UpsertHub(id)
	h.Lat, h.Lon = lat, lon
	return h
}

func TestSpatialFilterTwoStartsUsesEllipse(t *testing.T) {
	g := graphmodel.NewGraph()
	s1 := hubAt(g, "S1", 51.50, -0.10)
	s2 := hubAt(g, "S2", 51.52, -0.14)
	near := hubAt(g, "NEAR", 51.51, -0.12)
	far := hubAt(g, "FAR", 55.0, -3.0)
	_ = near
	_ = far

	cfg := FilterConfig{EllipseExpansion: 1.2, HullBufferFraction: 0.005, CoverageFraction: 0.70}
	candidates := SpatialFilter(g, []*graphmodel.Hub{s1, s2}, cfg)

	found := map[string]bool{}
	for _, c := range candidates {
		found[c.ID] = true
	}
	if found["FAR"] {
		t.Fatalf("expected the distant hub to be excluded")
	}
}

func TestSpatialFilterThreeStartsUsesHull(t *testing.T) {
	g := graphmodel.NewGraph()
	s1 := hubAt(g, "S1", 51.50, -0.10)
	s2 := hubAt(g, "S2", 51.52, -0.08)
	s3 := hubAt(g, "S3", 51.48, -0.12)
	hubAt(g, "MID", 51.50, -0.10)
	far := hubAt(g, "FAR", 55.0, -3.0)
	_ = far

	cfg := FilterConfig{EllipseExpansion: 1.2, HullBufferFraction: 0.005, CoverageFraction: 0.70}
	candidates := SpatialFilter(g, []*graphmodel.Hub{s1, s2, s3}, cfg)

	for _, c := range candidates {
		if c.ID == "FAR" {
			t.Fatalf("expected the distant hub to be excluded by the hull+coverage filter")
		}
	}
}

func TestSpatialFilterEmptyGraphReturnsNil(t *testing.T) {
	g := graphmodel.NewGraph()
	s1 := &graphmodel.Hub{ID: "S1", Lat: 51.5, Lon: -0.1}
	cfg := FilterConfig{EllipseExpansion: 1.2, HullBufferFraction: 0.005, CoverageFraction: 0.70}
	if got := SpatialFilter(g, []*graphmodel.Hub{s1}, cfg); got != nil {
		t.Fatalf("expected nil candidates for an empty graph, got %v", got)
	}
}
