// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

var (
	Version    = "v0.0"    // git name-rev --tags --name-only $(git rev-parse HEAD)
	CommitHash = "unknown" // git rev-parse HEAD
	BuiltAt    = "unknown" // LC_ALL=C date
)

// String is the one-line form used in logs and by the version command.
func String() string {
	return fmt.Sprintf("nullguard %s (%s, built %s)", Version, shortCommit(), BuiltAt)
}

func shortCommit() string {
	const n = 12
	if len(CommitHash) > n {
		return CommitHash[:n]
	}
	return CommitHash
}
