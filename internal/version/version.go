// Package version reports build information for the collegedash binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// These variables are set at build time using -ldflags, for example
//
//	-X github.com/conneroisu/collegedash/internal/version.Version=v1.2.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	// BuildTime is RFC3339.
	BuildTime = "unknown"
)

// Info contains version and build information
type Info struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Dirty     bool      `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Get collects build information, falling back to the module's embedded VCS
// settings when ldflags were not supplied.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime.IsZero() {
				info.BuildTime = parseBuildTime(setting.Value)
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

// Short returns a one-line version such as "v1.2.0 (abc1234)" or
// "dev-abc1234".
func Short() string {
	info := Get()
	if len(info.GitCommit) < 7 || info.GitCommit == "unknown" {
		return info.Version
	}
	commit := info.GitCommit[:7]
	if info.Version == "dev" {
		return "dev-" + commit
	}
	return fmt.Sprintf("%s (%s)", info.Version, commit)
}

// String renders info one field per line.
func (i Info) String() string {
	parts := []string{"Version: " + i.Version}
	if i.GitCommit != "unknown" {
		commit := i.GitCommit
		if i.Dirty {
			commit += " (dirty)"
		}
		parts = append(parts, "Commit: "+commit)
	}
	if !i.BuildTime.IsZero() {
		parts = append(parts, "Built: "+i.BuildTime.Format(time.RFC3339))
	}
	parts = append(parts, "Go: "+i.GoVersion, "Platform: "+i.Platform)
	return strings.Join(parts, "\n")
}

// IsRelease reports whether this is a tagged build.
func IsRelease() bool {
	v := Get().Version
	return v != "dev" && !strings.HasPrefix(v, "dev-")
}

func parseBuildTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
