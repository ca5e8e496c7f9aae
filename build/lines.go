package build

import "hublocator/graphmodel"

// DefaultLines is the curated line roster stage 1 walks, standing in
// for the full network list an operator would load from the
// provider's own line-list endpoint. Every entry here has a matching
// key in TerminalStations for stage 4 to fetch timetables against.
var DefaultLines = []LineSpec{
	{ID: "victoria", Name: "Victoria", Mode: graphmodel.ModeTube},
	{ID: "circle", Name: "Circle", Mode: graphmodel.ModeTube},
	{ID: "hammersmith-city", Name: "Hammersmith & City", Mode: graphmodel.ModeTube},
	{ID: "bakerloo", Name: "Bakerloo", Mode: graphmodel.ModeTube},
	{ID: "jubilee", Name: "Jubilee", Mode: graphmodel.ModeTube},
	{ID: "metropolitan", Name: "Metropolitan", Mode: graphmodel.ModeTube},
	{ID: "docklands", Name: "Docklands Light Railway", Mode: graphmodel.ModeLightRail},
	{ID: "tramlink", Name: "Tramlink", Mode: graphmodel.ModeLightRail},
}
