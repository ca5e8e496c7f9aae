package build

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"hublocator/corrections"
	"hublocator/graphmodel"
)

// LineSpec names one line to fetch in stage 1, per spec.md §4.2's
// "configured mode set (tube, light-rail, overground, suburban rail,
// express suburban line)".
type LineSpec struct {
	ID   string
	Name string
	Mode graphmodel.Mode
}

var lineDirections = []graphmodel.Direction{graphmodel.DirectionInbound, graphmodel.DirectionOutbound}

// stage1BuildBaseGraph implements spec.md §4.2: fetch every configured
// line's stop sequences in both directions, upsert hubs and
// null-weighted line edges, then apply the data-correction list.
func stage1BuildBaseGraph(ctx context.Context, p *Pipeline) error {
	g := p.Graph
	client := p.Client

	var repMu sync.Mutex
	bestMode := map[string]graphmodel.Mode{}

	updateRepresentative := func(hub *graphmodel.Hub, lat, lon float64, mode graphmodel.Mode) {
		repMu.Lock()
		defer repMu.Unlock()
		current, seen := bestMode[hub.ID]
		next := hub.MaybeUpdateRepresentative(lat, lon, mode, current, !seen)
		bestMode[hub.ID] = next
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.Config.Concurrency.Sequence)

	for _, line := range p.Lines {
		line := line
		for _, direction := range lineDirections {
			direction := direction
			group.Go(func() error {
				seq, err := client.LineRouteSequence(gctx, line.ID, string(direction))
				if err != nil {
					p.recordWarning("stage1", fmt.Sprintf("line %s direction %s: %v", line.ID, direction, err))
					return nil
				}
				for _, branch := range seq.StopPointSequences {
					var branchID *string
					if branch.Branch != "" {
						b := branch.Branch
						branchID = &b
					}
					var prevHubID string
					for i, sp := range branch.Stops {
						hubID := sp.HubIdentity()
						hub := g.UpsertHub(hubID)
						hub.MergeName(sp.Name)
						hub.AddMode(string(line.Mode))
						for _, m := range sp.Modes {
							hub.AddMode(m)
						}
						hub.AddLine(line.ID)
						hub.AddConstituent(graphmodel.ConstituentStation{Name: sp.Name, NaptanID: sp.ID})
						p.recordStationHub(sp.ID, hubID)
						updateRepresentative(hub, sp.Lat, sp.Lon, line.Mode)

						if i > 0 && prevHubID != "" && prevHubID != hubID {
							edge := graphmodel.NewLineEdge(prevHubID, hubID, line.ID, line.Name, line.Mode, direction, branchID)
							g.UpsertEdge(edge)
						}
						prevHubID = hubID
					}
				}
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("stage1: %w", err)
	}

	for _, h := range g.Hubs() {
		h.RecomputePrimaryID()
	}

	corrections.Apply(
		func(hub, line string) {
			if h := g.Hub(hub); h != nil {
				h.RemoveLine(line)
			}
		},
		func(source, target, line string) {
			if g.Hub(source) == nil || g.Hub(target) == nil {
				return
			}
			if !g.HasEdge(source, target, line) {
				edge := graphmodel.NewLineEdge(source, target, line, line, graphmodel.ModeTube, graphmodel.DirectionUnknown, nil)
				g.UpsertEdge(edge)
			}
		},
		corrections.List,
	)

	if errs := graphmodel.CheckNoSelfLoops(g); len(errs) > 0 {
		return fmt.Errorf("stage1: %d self-loop violations, first: %v", len(errs), errs[0])
	}

	log.Printf("stage1: %d hubs, %d edges", g.HubCount(), g.EdgeCount())
	return nil
}
