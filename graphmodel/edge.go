package graphmodel

// TransferKey is the fixed edge key used for every walking-transfer
// edge, per spec §3.
const TransferKey = "transfer"

// Direction tags a line edge's travel direction, spec §3.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
	DirectionUnknown  Direction = "unknown"
)

// Edge is one directed multigraph edge, keyed by (Source, Target, Key).
// A Key of "transfer" always means Transfer == true, Mode == "walking",
// Line == "walking" per spec §3.
type Edge struct {
	Source    string     `json:"source"`
	Target    string     `json:"target"`
	Key       string     `json:"key"`
	Line      string     `json:"line"`
	LineName  string     `json:"line_name"`
	Mode      string     `json:"mode"`
	Direction Direction  `json:"direction"`
	Branch    *string    `json:"branch"`
	Transfer  bool       `json:"transfer"`
	Weight    *float64   `json:"weight"`
}

// NewLineEdge builds a null-weighted line edge, as emitted by build
// stage 1.
func NewLineEdge(source, target, lineID, lineName string, mode Mode, direction Direction, branch *string) Edge {
	return Edge{
		Source:    source,
		Target:    target,
		Key:       lineID,
		Line:      lineID,
		LineName:  lineName,
		Mode:      string(mode),
		Direction: direction,
		Branch:    branch,
		Transfer:  false,
		Weight:    nil,
	}
}

// NewTransferEdge builds a null-weighted transfer edge, as emitted by
// build stage 2. The reverse twin must be added by the caller with the
// endpoints swapped.
func NewTransferEdge(source, target string) Edge {
	return Edge{
		Source:   source,
		Target:   target,
		Key:      TransferKey,
		Line:     "walking",
		Mode:     "walking",
		Transfer: true,
		Weight:   nil,
	}
}

// HasWeight reports whether the edge has been assigned a weight yet.
func (e Edge) HasWeight() bool { return e.Weight != nil }

// WeightOr returns the edge's weight, or the given fallback if null.
func (e Edge) WeightOr(fallback float64) float64 {
	if e.Weight == nil {
		return fallback
	}
	return *e.Weight
}

func floatPtr(v float64) *float64 { return &v }

// SetWeight assigns a weight in minutes.
func (e *Edge) SetWeight(minutes float64) { e.Weight = floatPtr(minutes) }
