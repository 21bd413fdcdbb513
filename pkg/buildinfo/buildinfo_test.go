package buildinfo

import (
	"runtime/debug"
	"testing"

	"loam.dev/pkg/tt"
)

func TestValue(t *testing.T) {
	if Value.Version == "" {
		t.Errorf("Value.Version is empty")
	}
	if Value.GoVersion == "" {
		t.Errorf("Value.GoVersion is empty")
	}
}

func vcs(revision, time, modified string) *debug.BuildInfo {
	return &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: revision},
		{Key: "vcs.time", Value: time},
		{Key: "vcs.modified", Value: modified},
	}}
}

// Calls devVersion with "0.9.0" as the next version and bi as the result of
// reading the build information; nil means it is not available.
func devVersionWith(vcsOverride string, bi *debug.BuildInfo) string {
	return devVersion("0.9.0", vcsOverride, func() (*debug.BuildInfo, bool) {
		return bi, bi != nil
	})
}

func TestDevVersion(t *testing.T) {
	tt.Test(t, tt.Fn("devVersion", devVersionWith), tt.Table{
		tt.Args("", (*debug.BuildInfo)(nil)).Rets("0.9.0-dev.unknown"),
		tt.Args("", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}).
			Rets("0.9.0-dev.unknown"),
		tt.Args("", &debug.BuildInfo{Main: debug.Module{Version: "v0.9.0-dev.abcdef"}}).
			Rets("0.9.0-dev.abcdef"),
		// Clean and dirty checkouts.
		tt.Args("", vcs("fedcba9876543210", "2026-03-14T15:09:26Z", "false")).
			Rets("0.9.0-dev.0.20260314150926-fedcba987654"),
		tt.Args("", vcs("fedcba9876543210", "2026-03-14T15:09:26Z", "true")).
			Rets("0.9.0-dev.0.20260314150926-fedcba987654-dirty"),
		tt.Args("", vcs("fedcba9876543210", "Pi Day", "false")).
			Rets("0.9.0-dev.unknown"),
		tt.Args("20260314150926-fedcba987654", (*debug.BuildInfo)(nil)).
			Rets("0.9.0-dev.0.20260314150926-fedcba987654"),
	})
}
