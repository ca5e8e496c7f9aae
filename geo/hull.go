package geo

import "sort"

// planarPoint is a point in (lon, lat) plane space, used for the
// convex-hull test in spec §4.10 step 2. The spec is explicit that the
// hull is computed "in (lon, lat) space" — i.e. as a planar polygon,
// not on the sphere — so this package intentionally does not reuse
// HaversineKm here.
type planarPoint struct {
	X, Y float64 // X = lon, Y = lat
}

func toPlanar(p Point) planarPoint { return planarPoint{X: p.Lon, Y: p.Lat} }

// cross returns the z-component of (o->a) x (o->b).
func cross(o, a, b planarPoint) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull computes the convex hull of the given points using
// Andrew's monotone chain algorithm, returned as a counter-clockwise
// polygon. No repo in the retrieval pack ships a convex-hull
// implementation (the corpus's geometry libraries — paulmach/orb in
// ttpr0-go-routing — are pulled in for OSM parsing, not planar hull
// computation, and that repo's own util/geo packages are missing from
// the retrieved copy besides), so this is hand-written directly
// against the Point type used throughout this package.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	pts := make([]planarPoint, len(points))
	for i, p := range points {
		pts[i] = toPlanar(p)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	n := len(pts)
	hull := make([]planarPoint, 0, 2*n)

	// lower hull
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper hull
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	out := make([]Point, len(hull))
	for i, h := range hull {
		out[i] = Point{Lat: h.Y, Lon: h.X}
	}
	return out
}

// BufferHull scales the hull outward by fraction, from its own
// centroid, matching original_source/spatial_filtering's
// point_in_hull buffering ("p + (p - centroid) * 0.005").
func BufferHull(hull []Point, fraction float64) []Point {
	c := Centroid(hull)
	out := make([]Point, len(hull))
	for i, p := range hull {
		out[i] = Point{
			Lat: p.Lat + (p.Lat-c.Lat)*fraction,
			Lon: p.Lon + (p.Lon-c.Lon)*fraction,
		}
	}
	return out
}

// PointInPolygon implements the standard ray-casting point-in-polygon
// test over a (lon, lat) planar polygon.
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	x, y := p.Lon, p.Lat
	n := len(polygon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := polygon[i].Lon, polygon[i].Lat
		xj, yj := polygon[j].Lon, polygon[j].Lat
		intersects := ((yi > y) != (yj > y)) &&
			(x < (xj-xi)*(y-yi)/(yj-yi)+xi)
		if intersects {
			inside = !inside
		}
	}
	return inside
}
