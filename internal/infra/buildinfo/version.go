package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

var (
	once     sync.Once
	resolved Info
)

// Get returns the build information, filling unset fields from the
// binary's embedded build settings.
func Get() Info {
	once.Do(func() {
		resolved = Info{
			Version:   Version,
			Commit:    Commit,
			BuildTime: BuildTime,
			GoVersion: GoVersion,
		}
		if resolved.GoVersion == "unknown" {
			resolved.GoVersion = runtime.Version()
		}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && resolved.Commit == "unknown":
				resolved.Commit = s.Value
			case s.Key == "vcs.time" && resolved.BuildTime == "unknown":
				resolved.BuildTime = s.Value
			}
		}
	})
	return resolved
}

// ShortCommit returns at most the first 8 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// String returns a formatted version string.
func String() string {
	i := Get()
	return i.Version + " (" + i.ShortCommit() + ") built at " + i.BuildTime + " with " + i.GoVersion
}
