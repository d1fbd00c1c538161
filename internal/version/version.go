// Package version provides application version and build info.
//
//nolint:revive
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Name is the product name shown by the CLI and the bot's help text.
const Name = "pixeltools"

var (
	// Version can be overridden by ldflags at build time.
	Version = "dev"
	// CommitHash can be overridden by ldflags at build time.
	CommitHash = ""
	// BuildTime can be overridden by ldflags at build time.
	BuildTime = ""

	readBuildOnce sync.Once
)

func readBuildInfo() {
	if CommitHash != "" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			CommitHash = setting.Value
		case "vcs.time":
			BuildTime = setting.Value
		}
	}
}

// GetInfo returns the version followed by the short commit hash when known.
func GetInfo() string {
	readBuildOnce.Do(readBuildInfo)
	res := Version
	if CommitHash != "" {
		shortHash := CommitHash
		if len(shortHash) > 7 {
			shortHash = shortHash[:7]
		}
		res += fmt.Sprintf(" (%s)", shortHash)
	}
	return res
}
