// Package provider wraps the third-party transport-data HTTP API: line
// sequences, nearby stops, timetables, and point-to-point journey
// durations. It owns rate limiting, retry-with-backoff, request
// deduplication, and the on-disk content-addressed cache described in
// spec.md §4.1.
package provider

// StopPoint is the per-stop shape shared by the sequence and
// stops-near endpoints (spec.md §6, §4.1).
type StopPoint struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	ParentID    string   `json:"parentId"`
	TopParentID string   `json:"topParentId"`
	Modes       []string `json:"modes"`
	Lines       []string `json:"lines"`
	Zone        string   `json:"zone"`
}

// HubIdentity returns the stop's hub key: top_parent_id, falling back
// to the stop's own ID when empty, per spec.md §4.2 step 2.
func (s StopPoint) HubIdentity() string {
	if s.TopParentID != "" {
		return s.TopParentID
	}
	return s.ID
}

// StopSequence is one ordered branch run within a line/direction
// response's stopPointSequences array.
type StopSequence struct {
	Branch string      `json:"branchId"`
	Stops  []StopPoint `json:"stopPoint"`
}

// SequenceResponse is the decoded shape of
// GET /line/{id}/route/sequence/{direction}.
type SequenceResponse struct {
	LineID              string         `json:"lineId"`
	Direction           string         `json:"direction"`
	StopPointSequences  []StopSequence `json:"stopPointSequences"`
}

// TimetableStop is one station's arrival/departure offset within a
// timetable branch, minutes relative to the branch's terminal.
type TimetableStop struct {
	StationID string  `json:"stationId"`
	ArrivalMin float64 `json:"arrivalOffsetMinutes"`
}

// TimetableBranch is one branch's ordered stop list with offsets.
type TimetableBranch struct {
	Branch string          `json:"branchId"`
	Stops  []TimetableStop `json:"stops"`
}

// TimetableResponse is the decoded shape of
// GET /line/{id}/timetable/{fromStopId}.
type TimetableResponse struct {
	LineID   string            `json:"lineId"`
	Branches []TimetableBranch `json:"branches"`
}

// JourneyResponse is the decoded shape of
// GET /journey/journeyresults/{from}/to/{to}.
type JourneyResponse struct {
	Journeys []struct {
		Duration int `json:"duration"`
	} `json:"journeys"`
}

// NoJourney is the sentinel duration returned by Journey when the
// provider reports no viable route for the requested mode, per
// spec.md §4.1.
const NoJourney = -1
