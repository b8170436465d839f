package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Info is the build identity reported by status endpoints.
type Info struct {
	Version string `json:"version" msgpack:"version"`
	Commit  string `json:"commit" msgpack:"commit"`
	Date    string `json:"date" msgpack:"date"`
}

// Current returns the linked-in build identity.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the banner printed at startup.
func String() string {
	return "tetris-clock " + Short() + " (" + Commit + ", " + Date + ")"
}
