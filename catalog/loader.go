package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/willibrandon/gosolc/cache"
	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/releases"
	"github.com/willibrandon/gosolc/version"
)

// Loader builds Catalog snapshots from persisted state.
type Loader struct {
	Layout Layout

	// Cache and Mirror locate the release listing written by releases.Client.
	// A nil Cache means no listing is known.
	Cache  *cache.DiskCache
	Mirror string

	// WorkDir is searched for the local marker; empty disables local selection.
	WorkDir string

	// Getenv reads SOLC_VERSION; nil uses os.Getenv.
	Getenv func(string) string

	Logger observability.Logger
}

// Load reads the listing, the artifacts directory and the selection markers.
// A malformed marker fails the load with a *version.MalformedVersionError.
func (l Loader) Load(ctx context.Context) (*Catalog, error) {
	logger := observability.OrNull(l.Logger)

	cat := &Catalog{
		Platform: l.Layout.Platform,
		Layout:   l.Layout,
		Builds:   map[version.Version]releases.Build{},
	}

	if err := l.loadListing(ctx, cat, logger); err != nil {
		return nil, err
	}

	installed, err := l.Installed(ctx)
	if err != nil {
		return nil, err
	}
	cat.Installed = installed

	if cat.Global, err = readMarker(l.Layout.GlobalMarker(), ScopeGlobal); err != nil {
		return nil, err
	}
	if cat.Local, err = l.localSelection(); err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "Catalog: {Available} available, {Installed} installed",
		len(cat.Available), len(cat.Installed))
	return cat, nil
}

func (l Loader) loadListing(ctx context.Context, cat *Catalog, logger observability.Logger) error {
	if l.Cache == nil {
		return nil
	}
	idx, ok, err := releases.ReadCachedIndex(l.Cache, l.Mirror, l.Layout.Platform)
	if err != nil {
		// a corrupt listing is replaced on the next refresh
		logger.WarnContext(ctx, "Ignoring cached release index: {Error}", err)
		return nil
	}
	if !ok {
		return nil
	}

	cat.Builds = idx.BuildMap()
	cat.Available = idx.Versions()
	if latest, ok := idx.Latest(); ok {
		cat.Latest = &latest
	}
	return nil
}

// Installed scans the artifacts directory. Entries whose name is not
// solc-<version> or that lack the binary are skipped and logged.
func (l Loader) Installed(ctx context.Context) (map[version.Version]Installation, error) {
	logger := observability.OrNull(l.Logger)
	out := map[version.Version]Installation{}

	entries, err := os.ReadDir(l.Layout.ArtifactsDir())
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan installed compilers: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasPrefix(name, artifactPrefix) {
			continue
		}
		v, err := version.Parse(strings.TrimPrefix(name, artifactPrefix))
		if err != nil || artifactPrefix+v.String() != name {
			logger.WarnContext(ctx, "Skipping unrecognized artifact directory {Name}", name)
			continue
		}
		path := l.Layout.BinaryPath(v)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			logger.WarnContext(ctx, "Skipping {Name}: binary {Path} missing", name, path)
			continue
		}
		out[v] = Installation{Version: v, Path: path}
	}
	return out, nil
}

func (l Loader) localSelection() (*Selection, error) {
	if l.WorkDir != "" {
		sel, err := readMarker(LocalMarker(l.WorkDir), ScopeLocal)
		if sel != nil || err != nil {
			return sel, err
		}
	}

	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	raw := strings.TrimSpace(getenv(VersionEnv))
	if raw == "" {
		return nil, nil
	}
	v, err := version.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", VersionEnv, err)
	}
	return &Selection{Version: v, Scope: ScopeEnv, Source: VersionEnv}, nil
}

// readMarker returns nil for a missing or blank marker. Only a regular file
// is a marker: run from $HOME, the local marker path is the gosolc root.
func readMarker(path string, scope Scope) (*Selection, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s selection: %w", scope, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s selection: %w", scope, err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil, nil
	}
	v, err := version.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s selection in %s: %w", scope, path, err)
	}
	return &Selection{Version: v, Scope: scope, Source: path}, nil
}
