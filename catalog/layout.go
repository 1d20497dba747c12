package catalog

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

const (
	// HomeEnv overrides the gosolc root directory.
	HomeEnv = "GOSOLC_HOME"

	// VirtualEnvEnv, when set, places the root inside the active virtualenv.
	VirtualEnvEnv = "VIRTUAL_ENV"

	// VersionEnv selects a version for the current shell when no local
	// marker exists in the working directory.
	VersionEnv = "SOLC_VERSION"

	// LocalMarkerName is the per-directory selection file.
	LocalMarkerName = ".gosolc"

	dirName          = ".gosolc"
	globalMarkerName = "global-version"
	artifactsDirName = "artifacts"
	cacheDirName     = "cache"
	artifactPrefix   = "solc-"
)

// Layout locates gosolc's files under a root directory:
//
//	<root>/artifacts/solc-<v>/solc-<v>   installed binaries
//	<root>/global-version                global selection
//	<root>/cache/                        cached release listings
type Layout struct {
	Root     string
	Platform releases.Platform
}

// DefaultRoot resolves the root directory from the environment:
// $GOSOLC_HOME, else $VIRTUAL_ENV/.gosolc, else ~/.gosolc.
func DefaultRoot(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if home := getenv(HomeEnv); home != "" {
		return filepath.Abs(home)
	}
	if venv := getenv(VirtualEnvEnv); venv != "" {
		return filepath.Join(venv, dirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot determine home directory; set " + HomeEnv)
	}
	return filepath.Join(home, dirName), nil
}

// ArtifactsDir is the directory holding one subdirectory per installed version.
func (l Layout) ArtifactsDir() string {
	return filepath.Join(l.Root, artifactsDirName)
}

// ArtifactDir is the install directory of v.
func (l Layout) ArtifactDir(v version.Version) string {
	return filepath.Join(l.ArtifactsDir(), artifactPrefix+v.String())
}

// BinaryPath is the installed executable of v.
func (l Layout) BinaryPath(v version.Version) string {
	return filepath.Join(l.ArtifactDir(v), l.Platform.Executable(v))
}

// GlobalMarker is the global selection file.
func (l Layout) GlobalMarker() string {
	return filepath.Join(l.Root, globalMarkerName)
}

// LocalMarker is the local selection file for dir.
func LocalMarker(dir string) string {
	return filepath.Join(dir, LocalMarkerName)
}

// CacheDir holds cached release listings.
func (l Layout) CacheDir() string {
	return filepath.Join(l.Root, cacheDirName)
}
