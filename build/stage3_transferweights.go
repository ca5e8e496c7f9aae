package build

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"hublocator/graphmodel"
	"hublocator/provider"
)

// stage3TransferWeights implements spec.md §4.4: for each recorded
// proximity pair, call journey(A, B, mode="walking") and write the
// result to both directed transfer edges. NoJourney or exhausted
// retries leave the weight null and are recorded as a build warning —
// the validation gate treats a remaining null transfer edge as
// scheduled for pruning.
func stage3TransferWeights(ctx context.Context, p *Pipeline) error {
	g := p.Graph
	pairs := p.proximityPairList()

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.Config.Concurrency.Journey)

	for _, pair := range pairs {
		pair := pair
		group.Go(func() error {
			a, b := g.Hub(pair[0]), g.Hub(pair[1])
			if a == nil || b == nil {
				return nil
			}
			minutes, err := p.Client.Journey(gctx, a.APIStationID(), b.APIStationID(), "walking")
			if err != nil {
				p.recordWarning("stage3", fmt.Sprintf("journey %s<->%s: %v", a.ID, b.ID, err))
				return nil
			}
			if minutes == provider.NoJourney {
				p.recordWarning("stage3", fmt.Sprintf("no walking journey between %s and %s", a.ID, b.ID))
				return nil
			}
			weight := float64(minutes)
			if fwd := g.Edge(a.ID, b.ID, graphmodel.TransferKey); fwd != nil {
				fwd.SetWeight(weight)
			}
			if rev := g.Edge(b.ID, a.ID, graphmodel.TransferKey); rev != nil {
				rev.SetWeight(weight)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("stage3: %w", err)
	}
	log.Printf("stage3: weighted %d transfer pairs", len(pairs))
	return nil
}
