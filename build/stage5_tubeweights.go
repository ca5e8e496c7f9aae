package build

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"hublocator/graphmodel"
	"hublocator/provider"
)

// timedTuple is one directional timing sample (line, from_hub, to_hub,
// minutes) reconstructed from a timetable branch, per spec.md §4.6.
type timedTuple struct {
	fromHub string
	toHub   string
	minutes float64
}

// stage5TubeLightRailWeights implements spec.md §4.6: reconstruct
// directional segment durations from the timetables stage 4 collected,
// reduce duplicate samples per (line, from_hub, to_hub) into a mean,
// and resolve the fallback allow-list via direct journey calls.
func stage5TubeLightRailWeights(ctx context.Context, p *Pipeline) error {
	g := p.Graph

	for _, line := range p.Lines {
		if line.Mode != graphmodel.ModeTube && line.Mode != graphmodel.ModeLightRail {
			continue
		}
		tuples, malformed, total := p.reconstructTuples(line.ID)
		if total > 0 && float64(malformed)/float64(total) > p.Config.MalformedHaltFraction {
			return fmt.Errorf("stage5: line %s has %d/%d malformed halts, exceeds %.0f%% threshold", line.ID, malformed, total, p.Config.MalformedHaltFraction*100)
		}
		grouped := groupTuples(tuples)
		for key, ds := range grouped {
			from, to := key.from, key.to
			if !g.HasEdge(from, to, line.ID) {
				continue
			}
			mean, spread, ok := reduceDurations(ds)
			if !ok {
				p.recordWarning("stage5", fmt.Sprintf("line %s %s->%s: no positive durations", line.ID, from, to))
				continue
			}
			if spread > p.Config.TimetableSpreadWarnMinutes {
				log.Printf("stage5: line %s %s->%s spread %.1f exceeds warn threshold, keeping mean %.1f", line.ID, from, to, spread, mean)
			}
			p.appendWeight(WeightRecord{
				Source: from, Target: to, Line: line.ID, Mode: string(line.Mode),
				DurationMinutes: mean, CalculatedTimestamp: nowTimestamp(),
			})
		}
	}

	if err := p.resolveFallbackAllowList(ctx); err != nil {
		return fmt.Errorf("stage5: %w", err)
	}
	log.Printf("stage5: %d weight records so far", len(p.weights))
	return nil
}

// reconstructTuples turns every collected timetable response for
// lineID into directional (from_hub, to_hub, minutes) samples. It also
// reports how many of the halts it walked could not be resolved to a
// known hub — a malformed halt, per spec §7's error-kind policy — out
// of the total halts examined, so the caller can enforce the
// configured halt threshold.
func (p *Pipeline) reconstructTuples(lineID string) (out []timedTuple, malformed, total int) {
	p.timetablesMu.Lock()
	responses := append([]provider.TimetableResponse(nil), p.timetables[lineID]...)
	p.timetablesMu.Unlock()

	for _, resp := range responses {
		for _, branch := range resp.Branches {
			for i := 0; i+1 < len(branch.Stops); i++ {
				total++
				s1, s2 := branch.Stops[i], branch.Stops[i+1]
				fromHub, ok1 := p.hubForStation(s1.StationID)
				toHub, ok2 := p.hubForStation(s2.StationID)
				if !ok1 || !ok2 {
					malformed++
					continue
				}
				if fromHub == toHub {
					continue
				}
				d := s2.ArrivalMin - s1.ArrivalMin
				out = append(out, timedTuple{fromHub: fromHub, toHub: toHub, minutes: d})
			}
		}
	}
	return out, malformed, total
}

type tupleKey struct{ from, to string }

func groupTuples(tuples []timedTuple) map[tupleKey][]float64 {
	grouped := map[tupleKey][]float64{}
	for _, t := range tuples {
		k := tupleKey{t.fromHub, t.toHub}
		grouped[k] = append(grouped[k], t.minutes)
	}
	return grouped
}

// reduceDurations drops non-positive samples, clamps the rest to >=
// 0.1, and returns their mean rounded to one decimal and the
// max-min spread, per spec.md §4.6.
func reduceDurations(ds []float64) (mean float64, spread float64, ok bool) {
	var kept []float64
	for _, d := range ds {
		if d <= 0 {
			continue
		}
		if d < 0.1 {
			d = 0.1
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return 0, 0, false
	}
	sort.Float64s(kept)
	spread = kept[len(kept)-1] - kept[0]
	sum := 0.0
	for _, d := range kept {
		sum += d
	}
	mean = math.Round((sum/float64(len(kept)))*10) / 10
	return mean, spread, true
}

// resolveFallbackAllowList implements the explicit fallback list in
// spec.md §4.6: edges known to be unrepresented in any timetable are
// resolved via direct journey calls instead.
func (p *Pipeline) resolveFallbackAllowList(ctx context.Context) error {
	g := p.Graph
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.Config.Concurrency.Journey)

	for _, entry := range FallbackAllowList {
		entry := entry
		if !g.HasEdge(entry.Source, entry.Target, entry.Line) {
			continue
		}
		group.Go(func() error {
			src, dst := g.Hub(entry.Source), g.Hub(entry.Target)
			if src == nil || dst == nil {
				return nil
			}
			minutes, err := p.Client.Journey(gctx, src.APIStationID(), dst.APIStationID(), entry.Mode)
			if err != nil || minutes < 0 {
				p.recordWarning("stage5", fmt.Sprintf("fallback journey %s->%s line %s unresolved", entry.Source, entry.Target, entry.Line))
				return nil
			}
			p.appendWeight(WeightRecord{
				Source: entry.Source, Target: entry.Target, Line: entry.Line, Mode: entry.Mode,
				DurationMinutes: math.Max(0.1, float64(minutes)), CalculatedTimestamp: nowTimestamp(),
			})
			return nil
		})
	}
	return group.Wait()
}
