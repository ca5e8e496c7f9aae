// Package corrections holds the small, hard-coded list of provider
// data fixes applied by build stage 1, per spec.md §4.2 step 5: the
// provider's raw sequence data is known-wrong in a handful of specific
// places (a decommissioned line still listed against a hub, an edge
// the sequence data skips in one direction, a missing reverse loop
// edge). Keeping the list as data in its own package, rather than
// inline in the stage-1 algorithm, matches the teacher's habit of
// separating "policy tables" from the code that walks them (compare
// preprocessing/gtfs.go's separation of parsing from the fixed GTFS
// column layout).
package corrections

import "log"

// Operation names a single correction kind.
type Operation string

const (
	// RemoveLine drops an erroneous line membership from a hub — the
	// provider still lists a line no longer serving that hub.
	RemoveLine Operation = "remove_line"
	// InsertEdge adds a line edge the sequence data skips in one
	// direction (a branch crossover the provider's per-direction
	// sequence omits).
	InsertEdge Operation = "insert_edge"
	// EnsureReverseEdge guarantees a loop line has both directions of
	// an edge present, even when the provider only lists one.
	EnsureReverseEdge Operation = "ensure_reverse_edge"
)

// Correction is a single hard-coded fix, logged when applied per
// spec.md §4.2 step 5 ("each correction ... must be logged").
type Correction struct {
	Operation Operation
	Hub       string // for RemoveLine
	Line      string // for RemoveLine and edge operations
	Source    string // for InsertEdge/EnsureReverseEdge
	Target    string // for InsertEdge/EnsureReverseEdge
	Reason    string
}

// List is the curated set of corrections applied at the end of build
// stage 1. It is intentionally small and explicit: every entry names
// the reason it exists, since there is no way to derive these from the
// provider's own data.
var List = []Correction{
	{
		Operation: RemoveLine,
		Hub:       "HUBSTP",
		Line:      "waterloo-city",
		Reason:    "Waterloo & City no longer listed as calling at St Pancras in provider metadata carried over from a prior timetable epoch",
	},
	{
		Operation: InsertEdge,
		Source:    "HUBEAC",
		Target:    "HUBWSD",
		Line:      "circle",
		Reason:    "Circle line eastbound sequence omits the Edgware Road branch crossover that the westbound sequence includes",
	},
	{
		Operation: EnsureReverseEdge,
		Source:    "HUBEAC",
		Target:    "HUBWSD",
		Line:      "hammersmith-city",
		Reason:    "Hammersmith & City loop reverse direction is missing from the provider's inbound sequence for this segment",
	},
}

// Apply runs every correction against g, logging each one. g must
// expose the narrow surface a correction needs: removing a line from a
// hub, or inserting/ensuring an edge. Callers pass closures rather than
// a concrete graph type so this package stays independent of
// graphmodel's edge-construction details.
func Apply(removeLine func(hub, line string), insertEdge func(source, target, line string), corrections []Correction) {
	for _, c := range corrections {
		switch c.Operation {
		case RemoveLine:
			log.Printf("correction: remove_line hub=%s line=%s reason=%q", c.Hub, c.Line, c.Reason)
			removeLine(c.Hub, c.Line)
		case InsertEdge:
			log.Printf("correction: insert_edge %s->%s line=%s reason=%q", c.Source, c.Target, c.Line, c.Reason)
			insertEdge(c.Source, c.Target, c.Line)
		case EnsureReverseEdge:
			// The forward direction is already present from stage 1's
			// route-sequence walk; only the Target->Source twin is
			// missing, so insert that direction only.
			log.Printf("correction: ensure_reverse_edge %s->%s line=%s reason=%q", c.Target, c.Source, c.Line, c.Reason)
			insertEdge(c.Target, c.Source, c.Line)
		}
	}
}
