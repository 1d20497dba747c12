// Package version provides build-time version information for the gosolc CLI.
// Version information is injected at build time using -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via -ldflags -X
var (
	// Version is the semantic version (e.g., "v0.1.0" or "dev")
	Version = "dev"

	// Commit is the git commit SHA (short form, e.g., "a1b2c3d" or "none")
	Commit = "none"

	// Date is the build timestamp (ISO 8601 format)
	Date = "unknown"

	// BuiltBy names the build system
	BuiltBy = "unknown"

	// GoVersion is the Go version used to build the binary
	GoVersion = runtime.Version()
)

// Info returns a one-line version string.
// Example output: "gosolc version v0.1.0 (commit: a1b2c3d, built: 2026-01-04T12:00:00Z)"
func Info() string {
	return fmt.Sprintf("gosolc version %s (commit: %s, built: %s)",
		Version, Commit, Date)
}

// FullInfo returns detailed version information including the Go version
// and the platform the binary was built for.
func FullInfo() string {
	return fmt.Sprintf("gosolc version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo: %s %s/%s",
		Version, Commit, Date, BuiltBy, GoVersion, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every mirror request.
func UserAgent() string {
	return "gosolc/" + Version
}
