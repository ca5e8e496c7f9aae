package build

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"hublocator/geo"
	"hublocator/graphmodel"
)

// stage2ProximityTransfers implements spec.md §4.3: for every hub,
// query nearby stops and emit a null-weighted transfer edge (plus its
// reverse) to any different hub not already connected by a line edge.
func stage2ProximityTransfers(ctx context.Context, p *Pipeline) error {
	g := p.Graph
	hubs := g.Hubs()

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.Config.Concurrency.StopsNear)

	for _, hub := range hubs {
		hub := hub
		group.Go(func() error {
			stops, err := p.Client.StopsNear(gctx, hub.Lat, hub.Lon, p.Config.ProximityRadiusM)
			if err != nil {
				p.recordWarning("stage2", fmt.Sprintf("stops_near for hub %s: %v", hub.ID, err))
				return nil
			}
			radiusKm := p.Config.ProximityRadiusM / 1000
			for _, sp := range stops {
				otherID := sp.HubIdentity()
				if otherID == hub.ID {
					continue
				}
				if g.Hub(otherID) == nil {
					continue
				}
				// stops_near is caller-filters: the provider may return
				// entries beyond radiusM, so re-check before wiring a
				// transfer edge.
				if !geo.WithinRadiusKm(geo.Point{Lat: hub.Lat, Lon: hub.Lon}, geo.Point{Lat: sp.Lat, Lon: sp.Lon}, radiusKm) {
					continue
				}
				if g.HasAnyLineEdge(hub.ID, otherID) {
					continue
				}
				if !g.HasEdge(hub.ID, otherID, graphmodel.TransferKey) {
					g.UpsertEdge(graphmodel.NewTransferEdge(hub.ID, otherID))
				}
				if !g.HasEdge(otherID, hub.ID, graphmodel.TransferKey) {
					g.UpsertEdge(graphmodel.NewTransferEdge(otherID, hub.ID))
				}
				p.recordProximityPair(hub.ID, otherID)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("stage2: %w", err)
	}
	log.Printf("stage2: %d proximity pairs recorded", len(p.proximityPairList()))
	return nil
}
