package query

import (
	"math"
	"testing"

	"hublocator/graphmodel"
)

func buildLineGraph() *graphmodel.Graph {
	g := graphmodel.NewGraph()
	g.UpsertHub("A")
	g.UpsertHub("B")
	g.UpsertHub("C")

	ab := graphmodel.NewLineEdge("A", "B", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	ab.SetWeight(3)
	g.UpsertEdge(ab)

	bc := graphmodel.NewLineEdge("B", "C", "L2", "Line Two", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	bc.SetWeight(4)
	g.UpsertEdge(bc)

	return g
}

func TestShortestPathSameHubIsZero(t *testing.T) {
	g := buildLineGraph()
	if cost := ShortestPath(g, "A", "A", DefaultChangePenaltyMinutes); cost != 0 {
		t.Fatalf("expected 0 for same-hub path, got %f", cost)
	}
}

func TestShortestPathAppliesLineChangePenalty(t *testing.T) {
	g := buildLineGraph()
	cost := ShortestPath(g, "A", "C", DefaultChangePenaltyMinutes)
	want := 3.0 + 4.0 + DefaultChangePenaltyMinutes
	if cost != want {
		t.Fatalf("expected %.1f (3+4+penalty), got %.1f", want, cost)
	}
}

func TestShortestPathNoPenaltyOnSameLine(t *testing.T) {
	g := graphmodel.NewGraph()
	g.UpsertHub("A")
	g.UpsertHub("B")
	g.UpsertHub("C")
	ab := graphmodel.NewLineEdge("A", "B", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	ab.SetWeight(3)
	g.UpsertEdge(ab)
	bc := graphmodel.NewLineEdge("B", "C", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	bc.SetWeight(4)
	g.UpsertEdge(bc)

	cost := ShortestPath(g, "A", "C", DefaultChangePenaltyMinutes)
	if cost != 7.0 {
		t.Fatalf("expected 7.0 with no line change, got %f", cost)
	}
}

func TestShortestPathTransferEdgesNeverPenalized(t *testing.T) {
	g := graphmodel.NewGraph()
	g.UpsertHub("A")
	g.UpsertHub("B")
	g.UpsertHub("C")
	ab := graphmodel.NewLineEdge("A", "B", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil)
	ab.SetWeight(3)
	g.UpsertEdge(ab)
	transfer := graphmodel.NewTransferEdge("B", "C")
	transfer.SetWeight(2)
	g.UpsertEdge(transfer)

	cost := ShortestPath(g, "A", "C", DefaultChangePenaltyMinutes)
	if cost != 5.0 {
		t.Fatalf("expected 5.0 (no penalty across a transfer), got %f", cost)
	}
}

func TestShortestPathUnreachableIsInf(t *testing.T) {
	g := graphmodel.NewGraph()
	g.UpsertHub("A")
	g.UpsertHub("Z")
	cost := ShortestPath(g, "A", "Z", DefaultChangePenaltyMinutes)
	if !math.IsInf(cost, 1) {
		t.Fatalf("expected +Inf for an unreachable target, got %f", cost)
	}
}

func TestShortestPathSkipsUnweightedEdges(t *testing.T) {
	g := graphmodel.NewGraph()
	g.UpsertHub("A")
	g.UpsertHub("B")
	g.UpsertEdge(graphmodel.NewLineEdge("A", "B", "L1", "Line One", graphmodel.ModeTube, graphmodel.DirectionOutbound, nil))

	cost := ShortestPath(g, "A", "B", DefaultChangePenaltyMinutes)
	if !math.IsInf(cost, 1) {
		t.Fatalf("expected an unweighted edge to be untraversable, got %f", cost)
	}
}
