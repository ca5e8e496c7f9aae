package query

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"hublocator/graphmodel"
	"hublocator/provider"
)

// UserEntry is one resolved participant, per spec.md §4.12 step 1. The
// caller has already resolved a display name into start_hub and, when
// the matched hub has more than one constituent station, selected
// start_station_id.
type UserEntry struct {
	StartHub       string
	WalkMinutes    float64
	StartStationID string
}

// Candidate is one ranked meeting point, carrying both the coarse
// estimate and, once refined, the provider-backed figures.
type Candidate struct {
	Hub          *graphmodel.Hub
	Total        float64
	Avg          float64
	TotalRefined float64
	AvgRefined   float64
}

// Result is the orchestrator's output: a ranked best candidate plus up
// to AlternativesReturned runners-up, or neither if no candidate
// survived every stage.
type Result struct {
	Best         *Candidate
	Alternatives []Candidate
}

// Config carries the tunables spec.md §6 lists for the query engine.
type Config struct {
	ChangePenaltyMinutes float64
	EllipseExpansion     float64
	HullBufferFraction   float64
	CoverageFraction     float64
	TopKRefined          int
	AlternativesReturned int
	CandidateConcurrency int
	JourneyConcurrency   int
}

// Run implements the four-stage query engine of spec.md §4.12: spatial
// filter, estimate, refine, rank.
func Run(ctx context.Context, g *graphmodel.Graph, client *provider.Client, users []UserEntry, cfg Config) (*Result, error) {
	starts := make([]*graphmodel.Hub, 0, len(users))
	for _, u := range users {
		hub := g.Hub(u.StartHub)
		if hub == nil {
			return nil, fmt.Errorf("query: unknown start hub %q", u.StartHub)
		}
		starts = append(starts, hub)
	}

	candidates := SpatialFilter(g, starts, FilterConfig{
		EllipseExpansion:   cfg.EllipseExpansion,
		HullBufferFraction: cfg.HullBufferFraction,
		CoverageFraction:   cfg.CoverageFraction,
	})
	if len(candidates) == 0 {
		return &Result{}, nil
	}

	estimated, err := estimateCandidates(ctx, g, candidates, users, cfg)
	if err != nil {
		return nil, fmt.Errorf("query: estimate stage: %w", err)
	}
	if len(estimated) == 0 {
		return &Result{}, nil
	}

	sort.Slice(estimated, func(i, j int) bool { return estimated[i].Avg < estimated[j].Avg })
	topK := cfg.TopKRefined
	if topK <= 0 || topK > len(estimated) {
		topK = len(estimated)
	}
	shortlist := estimated[:topK]

	refined, err := refineCandidates(ctx, client, shortlist, users, cfg)
	if err != nil {
		return nil, fmt.Errorf("query: refine stage: %w", err)
	}
	if len(refined) == 0 {
		return &Result{}, nil
	}

	sort.Slice(refined, func(i, j int) bool { return refined[i].TotalRefined < refined[j].TotalRefined })

	best := refined[0]
	alts := cfg.AlternativesReturned
	if alts < 0 {
		alts = 0
	}
	end := 1 + alts
	if end > len(refined) {
		end = len(refined)
	}
	return &Result{Best: &best, Alternatives: refined[1:end]}, nil
}

// estimateCandidates implements spec.md §4.12 step 3: per candidate,
// sum each user's Dijkstra cost plus their walk time; drop any
// candidate where a user's cost is infinite.
func estimateCandidates(ctx context.Context, g *graphmodel.Graph, candidates []*graphmodel.Hub, users []UserEntry, cfg Config) ([]Candidate, error) {
	penalty := cfg.ChangePenaltyMinutes
	if penalty <= 0 {
		penalty = DefaultChangePenaltyMinutes
	}

	results, err := mapConcurrent(ctx, cfg.CandidateConcurrency, candidates, func(_ context.Context, c *graphmodel.Hub) (*Candidate, error) {
		total := 0.0
		for _, u := range users {
			cost := ShortestPath(g, u.StartHub, c.ID, penalty)
			if math.IsInf(cost, 1) {
				log.Printf("query: candidate %s unreachable for user starting at %s", c.ID, u.StartHub)
				return nil, nil
			}
			legCost := cost + u.WalkMinutes
			log.Printf("query: candidate %s user %s ride=%.1f walk=%.1f", c.ID, u.StartHub, cost, u.WalkMinutes)
			total += legCost
		}
		return &Candidate{Hub: c, Total: total, Avg: total / float64(len(users))}, nil
	})
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// refineCandidates implements spec.md §4.12 step 5: for each shortlisted
// candidate, call the provider journey endpoint per user; a failure for
// any user drops the candidate.
func refineCandidates(ctx context.Context, client *provider.Client, shortlist []Candidate, users []UserEntry, cfg Config) ([]Candidate, error) {
	results, err := mapConcurrent(ctx, cfg.CandidateConcurrency, shortlist, func(ctx context.Context, c Candidate) (*Candidate, error) {
		targetID := c.Hub.APIStationID()
		total := 0.0
		for _, u := range users {
			minutes, err := client.Journey(ctx, u.StartStationID, targetID, "")
			if err != nil || minutes == provider.NoJourney {
				log.Printf("query refine: candidate %s dropped, no journey for user starting at %s", c.Hub.ID, u.StartStationID)
				return nil, nil
			}
			leg := float64(minutes) + u.WalkMinutes
			log.Printf("query refine: candidate %s user %s journey=%d walk=%.1f", c.Hub.ID, u.StartStationID, minutes, u.WalkMinutes)
			total += leg
		}
		c.TotalRefined = total
		c.AvgRefined = total / float64(len(users))
		return &c, nil
	})
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
