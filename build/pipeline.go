// Package build implements the eight-stage offline graph-construction
// pipeline described in spec.md §2 and §4.2-§4.9: base hub graph,
// proximity transfers, transfer weights, timetable fetch, tube/light-rail
// weights, other-mode weights, a validation gate, and the final weight
// merge. Stages are strictly ordered; within a stage, provider calls
// fan out over a bounded errgroup worker pool, mirroring spec.md §5.
package build

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hublocator/config"
	"hublocator/graphmodel"
	"hublocator/provider"
)

// Pipeline holds the state threaded through all eight stages.
type Pipeline struct {
	RunID  string
	Config config.Config
	Client *provider.Client
	Cache  *provider.Cache
	Lines  []LineSpec

	Graph *graphmodel.Graph

	warnMu   sync.Mutex
	warnings []string

	weightsMu sync.Mutex
	weights   []WeightRecord

	proximityMu sync.Mutex
	// proximityPairs are the unordered {hubA, hubB} pairs stage 2
	// recorded for stage 3 to weight, keyed "hubA|hubB" with hubA < hubB.
	proximityPairs map[string][2]string

	timetablesMu sync.Mutex
	// timetables collects every terminal's response per line for stage
	// 5 to union, per spec.md §4.5 ("the union is computed at
	// processing time, stage 5").
	timetables map[string][]provider.TimetableResponse

	stationHubMu sync.Mutex
	// stationHub maps a provider station ID to the hub it was merged
	// into during stage 1, letting stage 5 translate timetable station
	// IDs into hub IDs.
	stationHub map[string]string
}

// WeightRecord is one entry of the calculated-weights artifact, per
// spec.md §6.
type WeightRecord struct {
	Source               string  `json:"source"`
	Target               string  `json:"target"`
	Line                 string  `json:"line"`
	Mode                 string  `json:"mode"`
	DurationMinutes      float64 `json:"duration_minutes"`
	CalculatedTimestamp  string  `json:"calculated_timestamp"`
}

// Result is what a successful Run returns.
type Result struct {
	RunID    string
	Graph    *graphmodel.Graph
	Weights  []WeightRecord
	Warnings []string
}

// NewPipeline creates a fresh pipeline. runID should come from
// uuid.New().String() unless the caller has one already (tests may
// pass a fixed ID).
func NewPipeline(runID string, cfg config.Config, client *provider.Client, cache *provider.Cache, lines []LineSpec) *Pipeline {
	if runID == "" {
		runID = uuid.New().String()
	}
	return &Pipeline{
		RunID:          runID,
		Config:         cfg,
		Client:         client,
		Cache:          cache,
		Lines:          lines,
		Graph:          graphmodel.NewGraph(),
		proximityPairs: map[string][2]string{},
		timetables:     map[string][]provider.TimetableResponse{},
		stationHub:     map[string]string{},
	}
}

func (p *Pipeline) recordStationHub(stationID, hubID string) {
	if stationID == "" {
		return
	}
	p.stationHubMu.Lock()
	defer p.stationHubMu.Unlock()
	p.stationHub[stationID] = hubID
}

func (p *Pipeline) hubForStation(stationID string) (string, bool) {
	p.stationHubMu.Lock()
	defer p.stationHubMu.Unlock()
	hubID, ok := p.stationHub[stationID]
	return hubID, ok
}

func (p *Pipeline) hasLine(lineID string) bool {
	for _, l := range p.Lines {
		if l.ID == lineID {
			return true
		}
	}
	return false
}

func (p *Pipeline) lineByID(lineID string) (LineSpec, bool) {
	for _, l := range p.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return LineSpec{}, false
}

func (p *Pipeline) recordWarning(stage, msg string) {
	p.warnMu.Lock()
	defer p.warnMu.Unlock()
	p.warnings = append(p.warnings, fmt.Sprintf("[%s] %s", stage, msg))
}

func (p *Pipeline) appendWeight(rec WeightRecord) {
	p.weightsMu.Lock()
	defer p.weightsMu.Unlock()
	p.weights = append(p.weights, rec)
}

func (p *Pipeline) recordProximityPair(a, b string) {
	if a == b {
		return
	}
	if a > b {
		a, b = b, a
	}
	key := a + "|" + b
	p.proximityMu.Lock()
	defer p.proximityMu.Unlock()
	p.proximityPairs[key] = [2]string{a, b}
}

func (p *Pipeline) proximityPairList() [][2]string {
	p.proximityMu.Lock()
	defer p.proximityMu.Unlock()
	out := make([][2]string, 0, len(p.proximityPairs))
	for _, pair := range p.proximityPairs {
		out = append(out, pair)
	}
	return out
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Run executes stages 1 through 8 in order. Cooperative cancellation:
// if ctx is cancelled between stages, Run stops scheduling new stages
// and returns ctx.Err(); in-flight stage work is allowed to finish its
// current errgroup.Wait() before the check is made, per spec.md §5.
func Run(ctx context.Context, cfg config.Config, client *provider.Client, cache *provider.Cache, lines []LineSpec) (*Result, error) {
	p := NewPipeline("", cfg, client, cache, lines)

	stages := []struct {
		name string
		fn   func(context.Context, *Pipeline) error
	}{
		{"stage1_base_hub_graph", stage1BuildBaseGraph},
		{"stage2_proximity_transfers", stage2ProximityTransfers},
		{"stage3_transfer_weights", stage3TransferWeights},
		{"stage4_timetable_fetch", stage4TimetableFetch},
		{"stage5_tube_light_rail_weights", stage5TubeLightRailWeights},
		{"stage6_other_mode_weights", stage6OtherModeWeights},
		{"stage7_validation_gate", stage7ValidationGate},
		{"stage8_graph_weight_merge", stage8GraphWeightMerge},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build run %s: cancelled before %s: %w", p.RunID, s.name, err)
		}
		if err := s.fn(ctx, p); err != nil {
			return nil, fmt.Errorf("build run %s failed at %s: %w", p.RunID, s.name, err)
		}
	}

	return &Result{
		RunID:    p.RunID,
		Graph:    p.Graph,
		Weights:  p.weights,
		Warnings: p.warnings,
	}, nil
}
