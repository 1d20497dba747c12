// Package releases reads the Solidity compiler release listings and
// downloads compiler artifacts.
//
// The listing format is the list.json published per platform under
// https://binaries.soliditylang.org. On Linux the oldest releases are merged
// in from a legacy mirror that republishes them as static binaries.
package releases

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/willibrandon/gosolc/version"
)

// Build is one entry of a list.json "builds" array.
type Build struct {
	Path        string   `json:"path"`
	Version     string   `json:"version"`
	Prerelease  string   `json:"prerelease,omitempty"`
	Build       string   `json:"build"`
	LongVersion string   `json:"longVersion"`
	Keccak256   string   `json:"keccak256"`
	SHA256      string   `json:"sha256"`
	URLs        []string `json:"urls,omitempty"`

	// BaseURL is set on entries merged from another mirror and overrides
	// the client's mirror when building the download URL.
	BaseURL string `json:"baseUrl,omitempty"`
}

// ParsedVersion returns the build's version.
func (b Build) ParsedVersion() (version.Version, error) {
	return version.Parse(b.Version)
}

// Index is a decoded list.json.
type Index struct {
	Builds        []Build           `json:"builds"`
	Releases      map[string]string `json:"releases"`
	LatestRelease string            `json:"latestRelease"`
}

// DecodeIndex parses a list.json document.
func DecodeIndex(r io.Reader) (*Index, error) {
	var idx Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode release index: %w", err)
	}
	if idx.Releases == nil {
		idx.Releases = map[string]string{}
	}
	return &idx, nil
}

// validateIndex is the disk cache validator for listings.
func validateIndex(r io.ReadSeeker) error {
	_, err := DecodeIndex(r)
	return err
}

// Lookup returns the release build for v. Prerelease (nightly) builds are
// never returned.
func (idx *Index) Lookup(v version.Version) (Build, bool) {
	for _, b := range idx.Builds {
		if b.Prerelease != "" {
			continue
		}
		if bv, err := b.ParsedVersion(); err == nil && bv == v {
			return b, true
		}
	}
	return Build{}, false
}

// Versions returns the release versions in the index, ascending and
// deduplicated. Entries whose version does not parse are skipped.
func (idx *Index) Versions() []version.Version {
	out := make([]version.Version, 0, len(idx.Builds))
	for _, b := range idx.Builds {
		if b.Prerelease != "" {
			continue
		}
		if v, err := b.ParsedVersion(); err == nil {
			out = append(out, v)
		}
	}
	return version.Unique(out)
}

// Latest returns the latestRelease field, falling back to the greatest
// build version when the field is absent or malformed.
func (idx *Index) Latest() (version.Version, bool) {
	if v, err := version.Parse(idx.LatestRelease); err == nil {
		return v, true
	}
	return version.Max(idx.Versions())
}

// BuildMap returns the release builds keyed by version.
func (idx *Index) BuildMap() map[version.Version]Build {
	out := make(map[version.Version]Build, len(idx.Builds))
	for _, b := range idx.Builds {
		if b.Prerelease != "" {
			continue
		}
		if v, err := b.ParsedVersion(); err == nil {
			out[v] = b
		}
	}
	return out
}

// mergeLegacy replaces every entry of idx that keep selects with the
// matching entries of legacy. Merged builds carry baseURL so downloads go
// to the legacy mirror.
func (idx *Index) mergeLegacy(legacy *Index, baseURL string, keep func(version.Version) bool) {
	selected := func(b Build) bool {
		v, err := b.ParsedVersion()
		return err == nil && keep(v)
	}

	builds := idx.Builds[:0:0]
	for _, b := range idx.Builds {
		if !selected(b) {
			builds = append(builds, b)
		}
	}
	for _, b := range legacy.Builds {
		if selected(b) && b.Prerelease == "" {
			b.BaseURL = baseURL
			builds = append(builds, b)
		}
	}
	idx.Builds = builds

	for k := range idx.Releases {
		if v, err := version.Parse(k); err == nil && keep(v) {
			delete(idx.Releases, k)
		}
	}
	for k, path := range legacy.Releases {
		if v, err := version.Parse(k); err == nil && keep(v) {
			idx.Releases[k] = path
		}
	}
}

// joinURL joins a base URL and an artifact path with exactly one slash.
func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
