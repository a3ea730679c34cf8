package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty"`
}

// Get returns build information, filling commit and Go version from the
// embedded build info when ldflags did not set them.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short returns "<version>[-<commit>][-dirty]".
func Short() string {
	info := Get()
	parts := []string{info.Version}
	if info.GitCommit != "" {
		parts = append(parts, info.GitCommit)
	}
	if info.IsDirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// UserAgent is the default User-Agent header sent by httpclient.
func UserAgent() string {
	return fmt.Sprintf("webrequest/%s", Version)
}
