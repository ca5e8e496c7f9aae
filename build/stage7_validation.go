package build

import (
	"context"
	"fmt"
	"log"
	"math"

	"hublocator/graphmodel"
	"hublocator/hublerr"
)

// stage7ValidationGate implements spec.md §4.8: every non-transfer
// edge must have exactly one calculated-weights record, every record
// must match a graph edge, durations must be finite/positive/<=180,
// and transfer edges must keep the reverse-twin invariant. On any
// failure it emits a diff report via log.Printf and returns an error —
// stage 8 never runs and no artifact is produced.
func stage7ValidationGate(ctx context.Context, p *Pipeline) error {
	g := p.Graph
	var diffs []string

	type edgeKey struct{ source, target, line string }
	countsByKey := map[edgeKey]int{}
	for _, rec := range p.weights {
		k := edgeKey{rec.Source, rec.Target, rec.Line}
		countsByKey[k]++

		if math.IsNaN(rec.DurationMinutes) || math.IsInf(rec.DurationMinutes, 0) || rec.DurationMinutes <= 0 {
			diffs = append(diffs, fmt.Sprintf("record %s->%s[%s]: duration %.2f not finite/positive", rec.Source, rec.Target, rec.Line, rec.DurationMinutes))
		}
		if rec.DurationMinutes > 180 {
			diffs = append(diffs, fmt.Sprintf("record %s->%s[%s]: duration %.2f exceeds 180 minute cap", rec.Source, rec.Target, rec.Line, rec.DurationMinutes))
		}
		if !g.HasEdge(rec.Source, rec.Target, rec.Line) {
			diffs = append(diffs, fmt.Sprintf("record %s->%s[%s]: no matching graph edge", rec.Source, rec.Target, rec.Line))
		}
	}

	for _, e := range g.AllEdges() {
		if e.Transfer {
			continue
		}
		k := edgeKey{e.Source, e.Target, e.Line}
		switch countsByKey[k] {
		case 1:
			// exactly one record, as required
		case 0:
			diffs = append(diffs, fmt.Sprintf("edge %s->%s[%s]: no calculated-weights record", e.Source, e.Target, e.Key))
		default:
			diffs = append(diffs, fmt.Sprintf("edge %s->%s[%s]: %d calculated-weights records, expected exactly 1", e.Source, e.Target, e.Key, countsByKey[k]))
		}
	}

	for _, err := range graphmodel.CheckTransferSymmetry(g, 0.01) {
		diffs = append(diffs, err.Error())
	}

	for _, err := range graphmodel.CheckEdgeLineSoundness(g) {
		diffs = append(diffs, err.Error())
	}

	if len(diffs) > 0 {
		for _, d := range diffs {
			log.Printf("stage7 diff: %s", d)
		}
		return hublerr.New(hublerr.ValidationFailure, "stage7", fmt.Errorf("validation failed with %d mismatches", len(diffs)))
	}

	log.Printf("stage7: validation passed, %d weight records, %d graph edges", len(p.weights), g.EdgeCount())
	return nil
}
