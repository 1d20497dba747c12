package constraint

import (
	"github.com/willibrandon/gosolc/version"
)

// Matches reports whether v satisfies the clause.
func (c Clause) Matches(v version.Version) bool {
	for _, p := range c.Expand() {
		if !p.holds(v) {
			return false
		}
	}
	return true
}

// holds evaluates a primitive (already expanded) clause.
func (c Clause) holds(v version.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	default:
		return false
	}
}

// Matches reports whether v satisfies every clause of the expression.
// An expression without clauses matches nothing.
func (e Expression) Matches(v version.Version) bool {
	if len(e.clauses) == 0 {
		return false
	}
	for _, c := range e.clauses {
		if !c.Matches(v) {
			return false
		}
	}
	return true
}

// FilterCompatible returns the versions that satisfy e, in input order.
func FilterCompatible(e Expression, versions []version.Version) []version.Version {
	var out []version.Version
	for _, v := range versions {
		if e.Matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// Recommend returns the greatest version that satisfies e.
//
// Returns false if no version satisfies e.
func Recommend(e Expression, versions []version.Version) (version.Version, bool) {
	var best version.Version
	found := false

	for _, v := range versions {
		if e.Matches(v) {
			if !found || v.GreaterThan(best) {
				best = v
				found = true
			}
		}
	}

	return best, found
}
