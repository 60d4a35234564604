// Package version exposes the build metadata behind cosim version.
package version

import (
	"fmt"
	"runtime"
)

// Release builds inject these through
// -ldflags "-X github.com/metehan777/cosine-similarity-aio/pkg/version.<name>=...".
// A plain go build leaves the dev defaults in place.
var (
	// Version is the semver release, or "dev".
	Version = "dev"

	// Commit is the short git hash of the build.
	Commit = "unknown"

	// Date is the RFC3339 build timestamp.
	Date = "unknown"
)

// GoVersion is the toolchain that built the binary, taken at runtime.
var GoVersion = runtime.Version()

// BuildInfo is the version report in a JSON-friendly shape.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String renders the one-line version banner with all build info.
func String() string {
	return fmt.Sprintf("cosim %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, GoVersion)
}

// Short returns the bare version.
func Short() string {
	return Version
}

// GetInfo collects the build metadata for cosim version --json.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version: Version, Commit: Commit, Date: Date,
		GoVersion: GoVersion, OS: runtime.GOOS, Arch: runtime.GOARCH,
	}
}
