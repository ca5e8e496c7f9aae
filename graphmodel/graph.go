package graphmodel

import "sync"

// edgeKey identifies one multigraph edge slot.
type edgeKey struct {
	Source string
	Target string
	Key    string
}

// Graph is the hub-level directed multigraph. All node/edge upserts go
// through a single mutex, matching spec §5's "single-writer at any
// time, protected by an internal lock when stage-internal parallelism
// upserts nodes/edges".
type Graph struct {
	mu sync.Mutex

	hubs  map[string]*Hub
	edges map[edgeKey]*Edge
	// adjacency indexes outgoing edges per source hub, for Dijkstra and
	// for the stage-2/6 "does a line edge already exist" checks.
	outAdj map[string][]edgeKey
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		hubs:   map[string]*Hub{},
		edges:  map[edgeKey]*Edge{},
		outAdj: map[string][]edgeKey{},
	}
}

// UpsertHub returns the hub with the given ID, creating it if absent.
func (g *Graph) UpsertHub(id string) *Hub {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.hubs[id]
	if !ok {
		h = NewHub(id)
		g.hubs[id] = h
	}
	return h
}

// Hub returns the hub with the given ID, or nil.
func (g *Graph) Hub(id string) *Hub {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hubs[id]
}

// HubCount returns the number of hubs.
func (g *Graph) HubCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.hubs)
}

// Hubs returns a snapshot slice of every hub.
func (g *Graph) Hubs() []*Hub {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Hub, 0, len(g.hubs))
	for _, h := range g.hubs {
		out = append(out, h)
	}
	return out
}

// HasEdge reports whether an edge with the given (source, target, key)
// exists, regardless of weight.
func (g *Graph) HasEdge(source, target, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.edges[edgeKey{source, target, key}]
	return ok
}

// HasAnyLineEdge reports whether any non-transfer edge exists between
// source and target in either direction — used by stage 2 to decide
// whether a proximity pair needs a transfer edge at all.
func (g *Graph) HasAnyLineEdge(a, b string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range g.outAdj[a] {
		if k.Target == b && k.Key != TransferKey {
			return true
		}
	}
	for _, k := range g.outAdj[b] {
		if k.Target == a && k.Key != TransferKey {
			return true
		}
	}
	return false
}

// UpsertEdge inserts the edge if the (source, target, key) slot is
// empty, and is a no-op otherwise (idempotent, per spec §4.3
// "duplicate pair additions are a no-op"). Returns the edge actually
// stored (existing or new) and whether it was newly inserted.
func (g *Graph) UpsertEdge(e Edge) (*Edge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := edgeKey{e.Source, e.Target, e.Key}
	if existing, ok := g.edges[k]; ok {
		return existing, false
	}
	stored := e
	g.edges[k] = &stored
	g.outAdj[e.Source] = append(g.outAdj[e.Source], k)
	return &stored, true
}

// Edge returns the edge at (source, target, key), or nil.
func (g *Graph) Edge(source, target, key string) *Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.edges[edgeKey{source, target, key}]
}

// RemoveEdge deletes the edge at (source, target, key), if present.
func (g *Graph) RemoveEdge(source, target, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := edgeKey{source, target, key}
	if _, ok := g.edges[k]; !ok {
		return
	}
	delete(g.edges, k)
	adj := g.outAdj[source]
	for i, ak := range adj {
		if ak == k {
			g.outAdj[source] = append(adj[:i], adj[i+1:]...)
			break
		}
	}
}

// OutEdges returns a snapshot of every edge leaving hub id.
func (g *Graph) OutEdges(id string) []*Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	adj := g.outAdj[id]
	out := make([]*Edge, 0, len(adj))
	for _, k := range adj {
		out = append(out, g.edges[k])
	}
	return out
}

// AllEdges returns a snapshot of every edge in the graph.
func (g *Graph) AllEdges() []*Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}
