// Package graphmodel is the hub-level multigraph shared by the build
// pipeline and the query engine: hubs (nodes), line edges, transfer
// edges, and the node-link JSON encoding for the final graph artifact.
//
// The node/edge shapes are adapted from the teacher's
// graph_generators/json_to_gob.go JSONGraph type, which encodes a
// NetworkX-style {directed, multigraph, graph:{nodes,links}} document;
// the artifact written here puts nodes and links at the top level
// instead (see NodeLinkDoc).
package graphmodel

import (
	"strings"
	"sync"
)

// Mode is one of the transport modes spec.md §3 names for a hub or
// line edge.
type Mode string

const (
	ModeTube        Mode = "tube"
	ModeLightRail   Mode = "light-rail"
	ModeOverground  Mode = "overground"
	ModeRail        Mode = "rail"
	ModeElizabeth   Mode = "elizabeth"
	ModeWalking     Mode = "walking"
)

// modeRank orders modes for the "keep the higher-ranked representative
// lat/lon" rule in spec §4.2 step 3 (tube > light-rail > overground >
// rail; elizabeth is treated as rail-tier since it runs as a heavy-rail
// service through central stretches of the network).
var modeRank = map[Mode]int{
	ModeTube:       4,
	ModeLightRail:  3,
	ModeOverground: 2,
	ModeElizabeth:  1,
	ModeRail:       1,
}

func rank(m Mode) int {
	if r, ok := modeRank[m]; ok {
		return r
	}
	return 0
}

// Higher reports whether m outranks other under the mode-priority rule.
func (m Mode) Higher(other Mode) bool { return rank(m) > rank(other) }

// ConstituentStation is one provider station grouped under a Hub.
type ConstituentStation struct {
	Name       string `json:"name"`
	NaptanID   string `json:"naptan_id"`
}

// Hub is a graph node: the union of every provider station sharing a
// top-most parent identifier.
type Hub struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Lat                 float64              `json:"lat"`
	Lon                 float64              `json:"lon"`
	Zone                *string              `json:"zone"`
	Modes               []string             `json:"modes"`
	Lines               []string             `json:"lines"`
	ConstituentStations []ConstituentStation `json:"constituent_stations"`
	PrimaryNaptanID     string               `json:"primary_naptan_id"`

	// mu guards Name, Modes, Lines, ConstituentStations, the
	// PrimaryNaptanID set by AddConstituent, and the sets below against
	// the concurrent merges stage 1 performs — one goroutine per (line,
	// direction), several of which can visit the same interchange hub at
	// once. MaybeUpdateRepresentative, RecomputePrimaryID and
	// APIStationID do not take it. Zero value is a valid unlocked mutex,
	// so hubs built via a bare struct literal (as tests do) are still
	// safe to use.
	mu      sync.Mutex
	modeSet map[string]bool
	lineSet map[string]bool
}

// NewHub creates an empty hub. Populate it with MergeName, AddMode,
// AddLine and AddConstituent.
func NewHub(id string) *Hub {
	return &Hub{
		ID:      id,
		modeSet: map[string]bool{},
		lineSet: map[string]bool{},
	}
}

// ensureSetsLocked lazily builds modeSet/lineSet from Modes/Lines. The
// caller must hold h.mu.
func (h *Hub) ensureSetsLocked() {
	if h.modeSet == nil {
		h.modeSet = map[string]bool{}
		for _, m := range h.Modes {
			h.modeSet[m] = true
		}
	}
	if h.lineSet == nil {
		h.lineSet = map[string]bool{}
		for _, l := range h.Lines {
			h.lineSet[l] = true
		}
	}
}

// HasMode reports whether the hub serves the given mode.
func (h *Hub) HasMode(m string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureSetsLocked()
	return h.modeSet[m]
}

// HasLine reports whether the hub carries the given line.
func (h *Hub) HasLine(line string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureSetsLocked()
	return h.lineSet[line]
}

// AddMode merges a mode into the hub's mode set.
func (h *Hub) AddMode(m string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureSetsLocked()
	if !h.modeSet[m] {
		h.modeSet[m] = true
		h.Modes = append(h.Modes, m)
	}
}

// AddLine merges a line into the hub's line set.
func (h *Hub) AddLine(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureSetsLocked()
	if !h.lineSet[line] {
		h.lineSet[line] = true
		h.Lines = append(h.Lines, line)
	}
}

// RemoveLine drops a line from the hub's line set — used by the
// data-correction list (spec §4.2 step 5a) to strip erroneous line
// membership the provider still reports for a hub.
func (h *Hub) RemoveLine(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureSetsLocked()
	if h.lineSet[line] {
		delete(h.lineSet, line)
		filtered := h.Lines[:0]
		for _, l := range h.Lines {
			if l != line {
				filtered = append(filtered, l)
			}
		}
		h.Lines = filtered
	}
}

// MergeName sets the hub's display name from name if it doesn't
// already have one: the first non-empty name wins.
func (h *Hub) MergeName(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Name == "" {
		h.Name = name
	}
}

// AddConstituent appends a station to the hub, deduplicating by
// NaptanID.
func (h *Hub) AddConstituent(station ConstituentStation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.ConstituentStations {
		if s.NaptanID == station.NaptanID {
			return
		}
	}
	h.ConstituentStations = append(h.ConstituentStations, station)
	if h.PrimaryNaptanID == "" && len(h.ConstituentStations) == 1 {
		h.PrimaryNaptanID = h.primaryFrom(station)
	}
}

// primaryFrom applies spec §3's primary-ID rule: the first non-hub
// constituent ID if available, else the hub ID itself.
func (h *Hub) primaryFrom(first ConstituentStation) string {
	if first.NaptanID != "" && !strings.HasPrefix(first.NaptanID, "HUB") {
		return first.NaptanID
	}
	return h.ID
}

// RecomputePrimaryID re-derives PrimaryNaptanID from the current
// constituent list, for use once all stations have been merged in.
func (h *Hub) RecomputePrimaryID() {
	for _, s := range h.ConstituentStations {
		if s.NaptanID != "" && !strings.HasPrefix(s.NaptanID, "HUB") {
			h.PrimaryNaptanID = s.NaptanID
			return
		}
	}
	h.PrimaryNaptanID = h.ID
}

// APIStationID implements the fallback chain from
// original_source/api_interaction/tfl_api.go determine_api_naptan_id:
// prefer PrimaryNaptanID unless it looks like a synthetic hub alias,
// else fall back to the first constituent's NaptanID, else the hub's
// own ID.
func (h *Hub) APIStationID() string {
	if h.PrimaryNaptanID != "" && !strings.HasPrefix(h.PrimaryNaptanID, "HUB") {
		return h.PrimaryNaptanID
	}
	if len(h.ConstituentStations) > 0 && h.ConstituentStations[0].NaptanID != "" {
		return h.ConstituentStations[0].NaptanID
	}
	if !strings.HasPrefix(h.ID, "HUB") {
		return h.ID
	}
	return h.PrimaryNaptanID
}

// MaybeUpdateRepresentative applies spec §4.2 step 3's "keep first
// seen lat/lon, override if a later station's mode ranks higher" rule.
func (h *Hub) MaybeUpdateRepresentative(lat, lon float64, mode Mode, currentBestMode Mode, isFirst bool) Mode {
	if isFirst {
		h.Lat, h.Lon = lat, lon
		return mode
	}
	if mode.Higher(currentBestMode) {
		h.Lat, h.Lon = lat, lon
		return mode
	}
	return currentBestMode
}
