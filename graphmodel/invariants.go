package graphmodel

import "fmt"

// CheckEdgeLineSoundness implements testable property 2: every
// non-transfer edge's line belongs to both endpoints' line-sets.
func CheckEdgeLineSoundness(g *Graph) []error {
	var errs []error
	for _, e := range g.AllEdges() {
		if e.Transfer {
			continue
		}
		src := g.Hub(e.Source)
		dst := g.Hub(e.Target)
		if src == nil || dst == nil {
			errs = append(errs, fmt.Errorf("edge %s->%s[%s] references missing hub", e.Source, e.Target, e.Key))
			continue
		}
		if !src.HasLine(e.Line) || !dst.HasLine(e.Line) {
			errs = append(errs, fmt.Errorf("edge %s->%s[%s]: line %s not in both endpoints' line-set", e.Source, e.Target, e.Key, e.Line))
		}
	}
	return errs
}

// CheckTransferSymmetry implements testable property 3: every transfer
// edge has a reverse twin with an equal weight (within tolerance).
func CheckTransferSymmetry(g *Graph, tolerance float64) []error {
	var errs []error
	for _, e := range g.AllEdges() {
		if !e.Transfer {
			continue
		}
		rev := g.Edge(e.Target, e.Source, TransferKey)
		if rev == nil {
			errs = append(errs, fmt.Errorf("transfer edge %s->%s has no reverse twin", e.Source, e.Target))
			continue
		}
		if e.Weight == nil && rev.Weight == nil {
			continue
		}
		if e.Weight == nil || rev.Weight == nil {
			errs = append(errs, fmt.Errorf("transfer edge %s<->%s has mismatched null weight", e.Source, e.Target))
			continue
		}
		diff := *e.Weight - *rev.Weight
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			errs = append(errs, fmt.Errorf("transfer edge %s<->%s weight mismatch: %.3f vs %.3f", e.Source, e.Target, *e.Weight, *rev.Weight))
		}
	}
	return errs
}

// CheckNoWeightlessLineEdges implements testable property 4: after
// stage 7 passes, no non-transfer edge has a null or non-positive
// weight.
func CheckNoWeightlessLineEdges(g *Graph) []error {
	var errs []error
	for _, e := range g.AllEdges() {
		if e.Transfer {
			continue
		}
		if e.Weight == nil || *e.Weight <= 0 {
			errs = append(errs, fmt.Errorf("line edge %s->%s[%s] has invalid weight", e.Source, e.Target, e.Key))
		}
	}
	return errs
}

// CheckNoSelfLoops implements the stage-1 output invariant "no
// self-loops".
func CheckNoSelfLoops(g *Graph) []error {
	var errs []error
	for _, e := range g.AllEdges() {
		if e.Source == e.Target {
			errs = append(errs, fmt.Errorf("self-loop edge %s[%s]", e.Source, e.Key))
		}
	}
	return errs
}
