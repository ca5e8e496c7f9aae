package build

// TerminalStations is the curated line ID -> terminal station ID list
// used by stage 4's timetable fetch, per spec.md §4.5. Terminal IDs are
// provider station IDs (not hub IDs) since the timetable endpoint is
// keyed "from" a specific station, per stop point.
var TerminalStations = map[string][]string{
	"victoria":          {"940GZZLUBXN", "940GZZLUBTN"},
	"circle":            {"940GZZLUERC", "940GZZLUERC"},
	"hammersmith-city":  {"940GZZLUHSC", "940GZZLUBKG"},
	"bakerloo":          {"940GZZLUHAW", "940GZZLUEAC"},
	"jubilee":           {"940GZZLUSTM", "940GZZLUSTF"},
	"metropolitan":      {"940GZZLUAMS", "940GZZLUASG"},
	"docklands":         {"940GZZDLBEC", "940GZZDLBNK"},
	"tramlink":          {"940GZZCRWCH", "940GZZCRELM"},
}

// FallbackAllowList is the explicit set of edges known to be
// under-represented in timetables (branch crossovers a linear stop
// sequence never records a direct segment for), per spec.md §4.6's
// "fallback allow-list" step. Each entry is resolved via a journey
// call with the given mode rather than a timetable-derived duration.
var FallbackAllowList = []struct {
	Source string
	Target string
	Line   string
	Mode   string
}{
	{Source: "HUBEAC", Target: "HUBWSD", Line: "circle", Mode: "tube"},
	{Source: "HUBBKG", Target: "HUBHSC", Line: "hammersmith-city", Mode: "tube"},
}
