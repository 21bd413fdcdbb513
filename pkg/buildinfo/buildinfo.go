// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X loam.dev/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// VersionBase is the version of loam. On development builds, it is the next
// release.
const VersionBase = "0.1.0"

// Release marks a release build, whose version is VersionBase itself.
var Release = "false"

// VCSOverride identifies the commit of a development build when the Go
// toolchain can't record it, in the form "20220401235958-123456789012".
var VCSOverride = ""

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// Type describes a build.
type Type struct {
	Version      string `json:"version"`
	GoVersion    string `json:"goversion"`
	Reproducible bool   `json:"reproducible"`
}

// Value describes the running binary.
var Value = Type{
	Version:      version(),
	GoVersion:    runtime.Version(),
	Reproducible: Reproducible == "true",
}

func version() string {
	if Release == "true" {
		return VersionBase
	}
	return devVersion(VersionBase, VCSOverride, debug.ReadBuildInfo)
}

// Builds the version of a development build, falling back to
// "<next>-dev.unknown" when the build carries no usable VCS data.
func devVersion(next, vcsOverride string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if vcsOverride != "" {
		return next + "-dev.0." + vcsOverride
	}
	fallback := next + "-dev.unknown"
	bi, ok := readBuildInfo()
	if !ok {
		return fallback
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}
	var revision, modified string
	var vcsTime time.Time
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, s.Value)
			if err != nil {
				return fallback
			}
			vcsTime = t
		}
	}
	if revision == "" || vcsTime.IsZero() {
		return fallback
	}
	v := fmt.Sprintf("%s-dev.0.%s-%.12s", next, vcsTime.UTC().Format("20060102150405"), revision)
	if modified == "true" {
		v += "-dirty"
	}
	return v
}
