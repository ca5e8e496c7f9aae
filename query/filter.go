// Package query implements the online hub-finder: the spatial
// candidate filter, line-labelled Dijkstra with a line-change penalty,
// and the estimate/refine/rank orchestrator described in spec.md §4.10
// through §4.12.
package query

import (
	"hublocator/geo"
	"hublocator/graphmodel"
)

// SpatialFilter computes the candidate hub set for a group of starting
// hubs, per spec.md §4.10.
func SpatialFilter(g *graphmodel.Graph, starts []*graphmodel.Hub, cfg FilterConfig) []*graphmodel.Hub {
	all := g.Hubs()
	if len(starts) == 0 || len(all) == 0 {
		return nil
	}

	startPoints := make([]geo.Point, len(starts))
	for i, h := range starts {
		startPoints[i] = geo.Point{Lat: h.Lat, Lon: h.Lon}
	}

	var shapeOK func(p geo.Point) bool
	switch {
	case len(starts) == 2:
		major := geo.EllipseMajorAxis(startPoints[0], startPoints[1], cfg.EllipseExpansion)
		shapeOK = func(p geo.Point) bool {
			return geo.PointInEllipse(p, startPoints[0], startPoints[1], major)
		}
	case len(starts) >= 3:
		hull := geo.ConvexHull(startPoints)
		buffered := geo.BufferHull(hull, cfg.HullBufferFraction)
		shapeOK = func(p geo.Point) bool {
			return geo.PointInPolygon(p, buffered)
		}
	default:
		// A single start has no ellipse/hull step; every hub qualifies
		// for step 1/2 and the coverage ball (radius 0 around the sole
		// start) narrows it down instead.
		shapeOK = func(p geo.Point) bool { return true }
	}

	centroid, radiusKm := geo.CoverageCentroidAndRadius(startPoints, cfg.CoverageFraction)

	var candidates []*graphmodel.Hub
	for _, hub := range all {
		p := geo.Point{Lat: hub.Lat, Lon: hub.Lon}
		if !shapeOK(p) {
			continue
		}
		if !geo.WithinRadiusKm(centroid, p, radiusKm) {
			continue
		}
		candidates = append(candidates, hub)
	}
	return candidates
}

// FilterConfig carries the configuration knobs the spatial filter
// needs, mirroring the relevant fields of config.Config so this
// package does not depend on the config package directly.
type FilterConfig struct {
	EllipseExpansion   float64
	HullBufferFraction float64
	CoverageFraction   float64
}
