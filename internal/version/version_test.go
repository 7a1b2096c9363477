package version

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildVars(t *testing.T, version, commit, built string) {
	t.Helper()
	oldVersion, oldCommit, oldBuilt := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, built
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = oldVersion, oldCommit, oldBuilt
	})
}

func TestGetUsesLdflags(t *testing.T) {
	withBuildVars(t, "v1.4.0", "0123456789abcdef", "2026-03-01T10:00:00Z")

	info := Get()
	assert.Equal(t, "v1.4.0", info.Version)
	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), info.BuildTime.UTC())
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")

	assert.Equal(t, "v1.4.0 (0123456)", Short())
	assert.True(t, IsRelease())
}

func TestShortDevBuild(t *testing.T) {
	withBuildVars(t, "dev", "abcdef0123", "unknown")
	assert.Equal(t, "dev-abcdef0", Short())
	assert.False(t, IsRelease())
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GitCommit: "abc",
		Dirty:     true,
		GoVersion: "go1.24",
		Platform:  "linux/amd64",
	}
	out := info.String()
	assert.True(t, strings.HasPrefix(out, "Version: v1.0.0\n"))
	assert.Contains(t, out, "Commit: abc (dirty)")
	assert.NotContains(t, out, "Built:")
	assert.Contains(t, out, "Platform: linux/amd64")
}

func TestParseBuildTime(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"2026-03-01T10:00:00Z", false},
		{"2026-03-01T10:00:00", false},
		{"2026-03-01 10:00:00", false},
		{"unknown", true},
		{"", true},
		{"yesterday", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.zero, parseBuildTime(tt.in).IsZero())
		})
	}
}
