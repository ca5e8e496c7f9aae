package geo

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestHaversineKmKnownDistance(t *testing.T) {
	kingsCross := Point{Lat: 51.5308, Lon: -0.1238}
	euston := Point{Lat: 51.5282, Lon: -0.1337}
	d := HaversineKm(kingsCross, euston)
	if d <= 0 || d > 2 {
		t.Fatalf("expected a sub-2km distance between adjacent hubs, got %f", d)
	}
}

func TestHaversineKmZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 51.5, Lon: -0.1}
	if d := HaversineKm(p, p); !almostEqual(d, 0, 1e-9) {
		t.Fatalf("expected zero distance for identical points, got %f", d)
	}
}

func TestPointInEllipseIncludesFoci(t *testing.T) {
	f1 := Point{Lat: 51.50, Lon: -0.10}
	f2 := Point{Lat: 51.52, Lon: -0.12}
	major := EllipseMajorAxis(f1, f2, 1.2)
	if !PointInEllipse(f1, f1, f2, major) {
		t.Fatalf("expected a focus point to lie within its own ellipse")
	}
}

func TestPointInEllipseExcludesFarPoint(t *testing.T) {
	f1 := Point{Lat: 51.50, Lon: -0.10}
	f2 := Point{Lat: 51.51, Lon: -0.11}
	major := EllipseMajorAxis(f1, f2, 1.2)
	far := Point{Lat: 55.0, Lon: -3.0}
	if PointInEllipse(far, f1, f2, major) {
		t.Fatalf("expected a distant point to fall outside the ellipse")
	}
}

func TestCoverageCentroidTwoPersonUsesMidpointAndHalfRadius(t *testing.T) {
	a := Point{Lat: 51.50, Lon: -0.10}
	b := Point{Lat: 51.52, Lon: -0.14}
	centroid, radius := CoverageCentroidAndRadius([]Point{a, b}, 0.70)

	wantCentroid := Point{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
	if !almostEqual(centroid.Lat, wantCentroid.Lat, 1e-9) || !almostEqual(centroid.Lon, wantCentroid.Lon, 1e-9) {
		t.Fatalf("expected midpoint centroid, got %v want %v", centroid, wantCentroid)
	}

	direct := HaversineKm(a, b)
	wantRadius := 0.70 * (direct / 2)
	if !almostEqual(radius, wantRadius, 1e-9) {
		t.Fatalf("expected radius %f, got %f", wantRadius, radius)
	}
}

func TestCoverageCentroidThreePersonCoversFraction(t *testing.T) {
	pts := []Point{
		{Lat: 51.50, Lon: -0.10},
		{Lat: 51.52, Lon: -0.12},
		{Lat: 51.48, Lon: -0.08},
	}
	centroid, radius := CoverageCentroidAndRadius(pts, 0.70)
	within := 0
	for _, p := range pts {
		if WithinRadiusKm(centroid, p, radius) {
			within++
		}
	}
	if float64(within)/float64(len(pts)) < 0.70 {
		t.Fatalf("expected at least 70%% of points covered by the computed radius, got %d of %d", within, len(pts))
	}
}

func TestConvexHullTriangle(t *testing.T) {
	pts := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 0},
		{Lat: 0.2, Lon: 0.2},
	}
	hull := ConvexHull(pts)
	if len(hull) != 3 {
		t.Fatalf("expected the interior point to be excluded, hull size %d", len(hull))
	}
}

func TestBufferHullExpandsOutward(t *testing.T) {
	hull := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 0},
	}
	buffered := BufferHull(hull, 0.005)
	for i, p := range hull {
		bp := buffered[i]
		if almostEqual(bp.Lat, p.Lat, 1e-12) && almostEqual(bp.Lon, p.Lon, 1e-12) {
			t.Fatalf("expected buffered vertex %d to move outward from %v, got same point", i, p)
		}
	}
}

func TestPointInPolygonSquare(t *testing.T) {
	square := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 2},
		{Lat: 2, Lon: 2},
		{Lat: 2, Lon: 0},
	}
	if !PointInPolygon(Point{Lat: 1, Lon: 1}, square) {
		t.Fatalf("expected center point to be inside the square")
	}
	if PointInPolygon(Point{Lat: 5, Lon: 5}, square) {
		t.Fatalf("expected far point to be outside the square")
	}
}
