package domain

// Static community catalog: supported regions, playlists, arena pools and
// team sizes. Display decoration (flags, emoji) belongs to the chat layer,
// not here.

var Regions = []Region{
	"NA-East",
	"NA-West",
	"EU",
	"ASIA",
	"OCE",
	"SAM",
	"ME",
}

var Modes = []Mode{
	"Soccar",
	"Hoops",
	"Rumble",
	"Dropshot",
	"Snow Day",
	"Heatseeker",
}

var TeamSizes = []TeamSize{1, 2, 3}

// DefaultMap is used when a mode has no configured arena pool.
const DefaultMap = "DFH Stadium"

var MapPool = map[Mode][]string{
	"Soccar":     {"DFH Stadium", "Mannfield", "Champions Field", "Neo Tokyo", "Urban Central", "Beckwith Park"},
	"Hoops":      {"Dunk House", "The Block"},
	"Rumble":     {"DFH Stadium", "Mannfield", "Champions Field"},
	"Dropshot":   {"Core 707", "Throwback Stadium"},
	"Snow Day":   {"Snowy DFH Stadium", "Wintry Mannfield"},
	"Heatseeker": {"DFH Stadium", "Mannfield", "Champions Field"},
}
