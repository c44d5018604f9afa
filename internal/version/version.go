package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the short git SHA of the build, "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the semantic version.
func Short() string {
	return Version
}

// Full returns the version with commit and build time, as printed by `version`.
func Full() string {
	return fmt.Sprintf("golden-orbit %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// KV returns the build metadata as logger key/value pairs.
func KV() []any {
	return []any{"version", Version, "commit", Commit}
}
