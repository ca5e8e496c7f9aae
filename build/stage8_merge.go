package build

import (
	"context"
	"fmt"
	"log"

	"hublocator/graphmodel"
)

// stage8GraphWeightMerge implements spec.md §4.9: apply every
// calculated-weights record to its matching graph edge, drop any
// non-transfer edge that remains null (a fail-safe — stage 7 should
// already guarantee this is empty), and prune null-weighted transfer
// edges.
func stage8GraphWeightMerge(ctx context.Context, p *Pipeline) error {
	g := p.Graph

	for _, rec := range p.weights {
		if e := g.Edge(rec.Source, rec.Target, rec.Line); e != nil {
			e.SetWeight(rec.DurationMinutes)
		}
	}

	var toDrop [][3]string
	for _, e := range g.AllEdges() {
		if e.HasWeight() {
			continue
		}
		if !e.Transfer {
			log.Printf("stage8: dropping unweighted non-transfer edge %s->%s[%s] (fail-safe, should be unreachable after stage 7)", e.Source, e.Target, e.Key)
		}
		toDrop = append(toDrop, [3]string{e.Source, e.Target, e.Key})
	}
	for _, d := range toDrop {
		g.RemoveEdge(d[0], d[1], d[2])
	}

	if errs := graphmodel.CheckNoWeightlessLineEdges(g); len(errs) > 0 {
		return fmt.Errorf("stage8: %d weightless line edges survived the merge, first: %v", len(errs), errs[0])
	}

	log.Printf("stage8: merge complete, %d hubs, %d edges", g.HubCount(), g.EdgeCount())
	return nil
}
