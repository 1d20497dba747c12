// Package catalog reconciles the known compiler releases with the installed
// binaries and the global and local selections.
//
// A Catalog is an immutable snapshot rebuilt for every invocation from the
// cached release listing, a scan of the artifacts directory and the
// selection marker files. The package only reads files; installs and
// selection changes are made by the installer.
package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

// Scope says where a selection came from.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
	ScopeEnv    Scope = "env"
)

// Selection is a version chosen through a marker file or the environment.
type Selection struct {
	Version version.Version
	Scope   Scope
	// Source is the marker path, or the environment variable name.
	Source string
}

// Installation is an installed compiler binary.
type Installation struct {
	Version version.Version
	Path    string
}

// NotInstalledError is returned when a version must be installed to proceed.
type NotInstalledError struct {
	Version   version.Version
	Installed []version.Version
	// Source names the selection that asked for the version, if any.
	Source string
}

func (e *NotInstalledError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("solc %s is not installed (selected by %s)", e.Version, e.Source)
	}
	return fmt.Sprintf("solc %s is not installed", e.Version)
}

// Catalog is a reconciled snapshot of releases, installs and selections.
type Catalog struct {
	Platform releases.Platform
	Layout   Layout

	// Available is the advisory set of known releases, ascending.
	Available []version.Version
	// Builds holds the listing metadata for each available version.
	Builds map[version.Version]releases.Build
	// Latest is the newest release according to the listing.
	Latest *version.Version

	// Installed is authoritative for what can be invoked now.
	Installed map[version.Version]Installation

	Global *Selection
	Local  *Selection
}

// CurrentVersion returns the local selection if set, else the global one.
func (c *Catalog) CurrentVersion() (Selection, bool) {
	if c.Local != nil {
		return *c.Local, true
	}
	if c.Global != nil {
		return *c.Global, true
	}
	return Selection{}, false
}

// IsInstalled reports whether v has an installed binary.
func (c *Catalog) IsInstalled(v version.Version) bool {
	_, ok := c.Installed[v]
	return ok
}

// IsAvailable reports whether the listing knows v.
func (c *Catalog) IsAvailable(v version.Version) bool {
	_, ok := c.Builds[v]
	return ok
}

// Installation returns the installed binary of v or a *NotInstalledError.
func (c *Catalog) Installation(v version.Version) (Installation, error) {
	if inst, ok := c.Installed[v]; ok {
		return inst, nil
	}
	return Installation{}, &NotInstalledError{Version: v, Installed: c.InstalledVersions()}
}

// InstalledVersions returns the installed versions, ascending.
func (c *Catalog) InstalledVersions() []version.Version {
	out := slices.Collect(maps.Keys(c.Installed))
	version.Sort(out)
	return out
}

// Installable returns the available versions that are not installed, ascending.
func (c *Catalog) Installable() []version.Version {
	var out []version.Version
	for _, v := range c.Available {
		if !c.IsInstalled(v) {
			out = append(out, v)
		}
	}
	return out
}

// Candidates returns available ∪ installed, deduplicated and ascending.
// Installed versions count even when the listing is stale or missing.
func (c *Catalog) Candidates() []version.Version {
	return version.Unique(c.Available, c.InstalledVersions())
}
