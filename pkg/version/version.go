// Package version provides version information for the application.
package version

import "fmt"

// Build information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns a one-line build description for the CLI and script headers.
func String() string {
	return fmt.Sprintf("lnkgen %s (%s, built %s)", Version, Commit, BuildTime)
}
