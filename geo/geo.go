// Package geo implements the spatial primitives behind the query
// engine's candidate filter: haversine distance, the two-focus ellipse
// test, convex-hull membership, and coverage-circle computation.
//
// The haversine implementation mirrors the teacher's own
// preprocessing/gtfs.go and routing/car.go, both of which hand-roll a
// haversineDistance helper rather than pulling in a geometry library —
// no repo in the retrieval pack imports one either, so this stays
// standard-library only.
package geo

import "math"

// Point is a (lat, lon) pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

const earthRadiusKm = 6371.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// HaversineKm returns the great-circle distance between a and b, in
// kilometres. Distance(A, B) == Distance(B, A) by construction.
func HaversineKm(a, b Point) float64 {
	lat1, lon1 := toRadians(a.Lat), toRadians(a.Lon)
	lat2, lon2 := toRadians(b.Lat), toRadians(b.Lon)
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Centroid returns the arithmetic mean of the given points.
func Centroid(points []Point) Point {
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return Point{Lat: lat / n, Lon: lon / n}
}

// PointInEllipse implements spec §4.10 step 1: an ellipse with focus1
// and focus2 as foci and the given major axis (km). A point qualifies
// iff the sum of its great-circle distances to the two foci is at most
// majorAxisKm, with a 0.5% tolerance for float/curvature error.
func PointInEllipse(p, focus1, focus2 Point, majorAxisKm float64) bool {
	sum := HaversineKm(p, focus1) + HaversineKm(p, focus2)
	tolerance := majorAxisKm * 0.005
	return sum <= majorAxisKm+tolerance
}

// EllipseMajorAxis returns the major axis for the two-focus ellipse
// filter: expansionFactor * the direct distance between the foci.
// expansionFactor must be > 1 — at exactly 1 the ellipse collapses to
// the segment between the foci (b = 0) and rejects every off-line hub.
func EllipseMajorAxis(focus1, focus2 Point, expansionFactor float64) float64 {
	return HaversineKm(focus1, focus2) * expansionFactor
}

// CoverageCentroidAndRadius implements spec §4.10 step 3: the smallest
// radius around the centroid of starts that covers at least
// coverageFraction of them.
//
// The N==2 case does not use the general "k-th smallest distance"
// rule. Following original_source/spatial_filtering and
// original_source/calculate_travel_time, two starts are special-cased:
// the centroid is their midpoint, and the radius is
// coverageFraction * (direct distance / 2) — i.e. coverageFraction of
// the distance from the midpoint to either focus, so with a fraction
// below 1 neither start lies inside the circle.
func CoverageCentroidAndRadius(starts []Point, coverageFraction float64) (centroid Point, radiusKm float64) {
	if len(starts) == 2 {
		centroid = Point{
			Lat: (starts[0].Lat + starts[1].Lat) / 2,
			Lon: (starts[0].Lon + starts[1].Lon) / 2,
		}
		direct := HaversineKm(starts[0], starts[1])
		radiusKm = coverageFraction * (direct / 2)
		return centroid, radiusKm
	}

	centroid = Centroid(starts)
	distances := make([]float64, len(starts))
	for i, s := range starts {
		distances[i] = HaversineKm(centroid, s)
	}
	sortFloat64s(distances)

	idx := int(math.Ceil(float64(len(distances)) * coverageFraction))
	if idx <= 0 {
		idx = 1
	}
	if idx > len(distances) {
		idx = len(distances)
	}
	radiusKm = distances[idx-1]
	return centroid, radiusKm
}

func sortFloat64s(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// WithinRadiusKm reports whether p lies within radiusKm of center.
func WithinRadiusKm(center, p Point, radiusKm float64) bool {
	return HaversineKm(center, p) <= radiusKm
}
