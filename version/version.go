// Package version provides solc release version parsing and comparison.
//
// A compiler version is a strict major.minor.patch triple. A single
// non-digit prefix such as "v" is accepted and stripped, so both "0.8.19"
// and "v0.8.19" parse to the same value.
//
// Example:
//
//	v, err := version.Parse("0.8.19")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v.Major, v.Minor, v.Patch) // 0 8 19
package version

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// triple is the only accepted shape once a prefix has been removed.
var triple = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is an immutable solc release version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// New returns the version major.minor.patch.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// MalformedVersionError is returned when a string is not a valid version.
type MalformedVersionError struct {
	Input  string
	Reason string
}

func (e *MalformedVersionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed version %q", e.Input)
	}
	return fmt.Sprintf("malformed version %q: %s", e.Input, e.Reason)
}

// Parse parses a version string.
//
// Accepted: "0.8.19", "v0.8.19", "solc-0.8.19". Rejected: "0.8", "0.8.19.1",
// "0.8.19-nightly", "", signed input such as "-0.8.19", and anything with a
// negative or overflowing component.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &MalformedVersionError{Input: s, Reason: "empty string"}
	}

	body := stripPrefix(s)
	if !triple.MatchString(body) {
		return Version{}, &MalformedVersionError{Input: s, Reason: "expected major.minor.patch"}
	}

	sv, err := semver.NewVersion(body)
	if err != nil {
		return Version{}, &MalformedVersionError{Input: s, Reason: err.Error()}
	}

	major, minor, patch := sv.Major(), sv.Minor(), sv.Patch()
	const maxComponent = uint64(^uint(0) >> 1)
	if major > maxComponent || minor > maxComponent || patch > maxComponent {
		return Version{}, &MalformedVersionError{Input: s, Reason: "component out of range"}
	}

	return Version{Major: int(major), Minor: int(minor), Patch: int(patch)}, nil
}

// MustParse parses a version string and panics on error.
// Use this only when you know the version string is valid.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// stripPrefix removes an artifact ("solc-") or "v" prefix. Signs and other
// leading characters are left for the triple check to reject.
func stripPrefix(s string) string {
	if rest, ok := strings.CutPrefix(s, "solc-"); ok {
		return rest
	}
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		return s[1:]
	}
	return s
}

// String returns the canonical "major.minor.patch" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 when v is less than, equal to or greater than other.
func (v Version) Compare(other Version) int {
	if c := cmpInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmpInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmpInt(v.Patch, other.Patch)
}

// Compare compares a and b. It is suitable for slices.SortFunc.
func Compare(a, b Version) int {
	return a.Compare(b)
}

// LessThan reports whether v sorts before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan reports whether v sorts after other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equals reports structural equality.
func (v Version) Equals(other Version) bool {
	return v == other
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort sorts versions in ascending order in place.
func Sort(versions []Version) {
	slices.SortFunc(versions, Compare)
}

// Unique returns a new ascending slice with duplicates removed.
func Unique(versions ...[]Version) []Version {
	var all []Version
	for _, vs := range versions {
		all = append(all, vs...)
	}
	Sort(all)
	return slices.Compact(all)
}

// Max returns the greatest version, or false for an empty slice.
func Max(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	return slices.MaxFunc(versions, Compare), true
}

// ParseAll parses every string, stopping at the first malformed one.
func ParseAll(ss []string) ([]Version, error) {
	out := make([]Version, 0, len(ss))
	for _, s := range ss {
		v, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
