/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package version reports which build of bundledeps is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"     // Version string (e.g., "v0.1.0")
	GitCommit = "unknown" // Git commit hash
	GitTag    = "unknown" // Git tag
	BuildTime = "unknown" // Build timestamp
	GitDirty  = ""        // "dirty" if working directory has uncommitted changes
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
	Dirty     bool   `json:"dirty"`
	GoVersion string `json:"goVersion"`
}

// Get collects version information from ldflags, falling back to the
// module and VCS data the Go toolchain embeds.
func Get() Info {
	info := Info{
		GitCommit: GitCommit,
		GitTag:    GitTag,
		BuildTime: BuildTime,
		Dirty:     GitDirty == "dirty",
		GoVersion: runtime.Version(),
	}

	var module string
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "(devel)" {
			module = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Dirty = info.Dirty || s.Value == "true"
			}
		}
	}

	info.Version = resolve(module, info)
	return info
}

func resolve(module string, info Info) string {
	if Version != "dev" {
		return Version
	}
	if module != "" {
		return module
	}
	if info.GitTag == "unknown" || info.GitCommit == "unknown" {
		return "dev"
	}

	v := info.GitTag
	short := info.GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	if !strings.HasSuffix(v, short) {
		v = fmt.Sprintf("%s-%s", v, short)
	}
	if info.Dirty {
		v += "-dirty"
	}
	return v
}

// String formats the version with its commit when known.
func (i Info) String() string {
	if i.GitCommit == "unknown" || i.GitCommit == "" {
		return i.Version
	}
	commit := i.GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (commit: %s)", i.Version, commit)
}
