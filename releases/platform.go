package releases

import (
	"fmt"
	"runtime"

	"github.com/willibrandon/gosolc/version"
)

// Platform names a binaries.soliditylang.org build directory.
type Platform string

const (
	Linux   Platform = "linux-amd64"
	MacOS   Platform = "macosx-amd64"
	Windows Platform = "windows-amd64"
)

// UnsupportedPlatformError is returned when no compiler builds exist for the host.
type UnsupportedPlatformError struct {
	GOOS   string
	GOARCH string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %s/%s", e.GOOS, e.GOARCH)
}

// PlatformFor maps a GOOS/GOARCH pair to a build platform. macOS on arm64
// runs the amd64 builds under Rosetta, so it maps to MacOS as well.
func PlatformFor(goos, goarch string) (Platform, error) {
	switch goos {
	case "linux":
		if goarch == "amd64" {
			return Linux, nil
		}
	case "darwin":
		if goarch == "amd64" || goarch == "arm64" {
			return MacOS, nil
		}
	case "windows":
		if goarch == "amd64" {
			return Windows, nil
		}
	}
	return "", &UnsupportedPlatformError{GOOS: goos, GOARCH: goarch}
}

// CurrentPlatform returns the build platform of the running host.
func CurrentPlatform() (Platform, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// ParsePlatform validates a platform name from configuration.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case Linux, MacOS, Windows:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// EarliestRelease is the oldest version published for the platform.
func (p Platform) EarliestRelease() version.Version {
	switch p {
	case MacOS:
		return version.New(0, 3, 6)
	case Windows:
		return version.New(0, 4, 1)
	default:
		return version.New(0, 4, 0)
	}
}

// legacyCutoff is the newest Linux version served from the legacy mirror;
// the official Linux builds of these releases are not static binaries.
var legacyCutoff = version.New(0, 4, 10)

// UsesLegacyMirror reports whether v is fetched from the legacy mirror on p.
func (p Platform) UsesLegacyMirror(v version.Version) bool {
	return p == Linux && !v.GreaterThan(legacyCutoff)
}

// zipCutoff is the newest Windows release published as a zip archive.
var zipCutoff = version.New(0, 7, 1)

// IsZipArchive reports whether the artifact for v on p is a zip archive
// containing solc.exe rather than a bare executable.
func (p Platform) IsZipArchive(v version.Version) bool {
	return p == Windows && !v.GreaterThan(zipCutoff)
}

// Executable returns the installed binary file name for v.
func (p Platform) Executable(v version.Version) string {
	name := "solc-" + v.String()
	if p == Windows {
		name += ".exe"
	}
	return name
}

func (p Platform) String() string { return string(p) }
