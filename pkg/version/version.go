// Package version reports build information for the dicetables binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at link time with -ldflags "-X github.com/Sumatoshi-tech/dicetables/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// Get returns the linked build info. When no commit was linked in, the VCS
// revision recorded by the Go toolchain is used.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}

	if info.Commit != "<unknown>" {
		return info
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.time":
			if info.Date == "<unknown>" {
				info.Date = setting.Value
			}
		}
	}

	return info
}

func (i Info) String() string {
	return fmt.Sprintf("dicetables %s (commit %s, built %s, %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}
