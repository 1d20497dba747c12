// Package resolver picks compiler versions for Solidity source from its
// pragma declarations and a catalog of candidate versions.
package resolver

import (
	"fmt"
	"strings"

	"github.com/willibrandon/gosolc/constraint"
	"github.com/willibrandon/gosolc/pragma"
	"github.com/willibrandon/gosolc/version"
)

// NoPragmaFoundError is returned for source without a `pragma solidity` statement.
// Unconstrained source never resolves to an arbitrary version.
type NoPragmaFoundError struct {
	// Source names the file, when known.
	Source string
}

func (e *NoPragmaFoundError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no `pragma solidity` declaration found in %s", e.Source)
	}
	return "no `pragma solidity` declaration found"
}

// NoCompatibleVersionError is returned when no candidate satisfies the expression.
type NoCompatibleVersionError struct {
	Expression constraint.Expression
	Candidates []version.Version
}

func (e *NoCompatibleVersionError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no version satisfies %q: no versions are known", e.Expression.String())
	}
	return fmt.Sprintf("no version satisfies %q among %d candidates (%s..%s)",
		e.Expression.String(), len(e.Candidates), e.Candidates[0], e.Candidates[len(e.Candidates)-1])
}

// CandidateSource supplies the versions a resolution may choose from.
// *catalog.Catalog implements it.
type CandidateSource interface {
	Candidates() []version.Version
}

// Expression extracts every declaration from source, parses each and
// combines them with AND.
func Expression(source string) (constraint.Expression, error) {
	return ExpressionOf(pragma.ExtractDeclarations(source))
}

// ExpressionOf parses already extracted declarations and combines them with AND.
func ExpressionOf(decls []string) (constraint.Expression, error) {
	if len(decls) == 0 {
		return constraint.Expression{}, &NoPragmaFoundError{}
	}

	var combined constraint.Expression
	for i, d := range decls {
		e, err := constraint.Parse(d)
		if err != nil {
			return constraint.Expression{}, err
		}
		if i == 0 {
			combined = e
		} else {
			combined = combined.And(e)
		}
	}
	return combined, nil
}

// ResolveRecommended returns the greatest candidate satisfying source's declarations.
func ResolveRecommended(source string, cat CandidateSource) (version.Version, error) {
	expr, err := Expression(source)
	if err != nil {
		return version.Version{}, err
	}
	return Recommend(expr, cat)
}

// ResolveAllCompatible returns every candidate satisfying source's
// declarations, ascending. An empty result is a *NoCompatibleVersionError.
func ResolveAllCompatible(source string, cat CandidateSource) ([]version.Version, error) {
	expr, err := Expression(source)
	if err != nil {
		return nil, err
	}
	return AllCompatible(expr, cat)
}

// Recommend is ResolveRecommended for an already parsed expression.
func Recommend(expr constraint.Expression, cat CandidateSource) (version.Version, error) {
	candidates := cat.Candidates()
	v, ok := constraint.Recommend(expr, candidates)
	if !ok {
		return version.Version{}, &NoCompatibleVersionError{Expression: expr, Candidates: candidates}
	}
	return v, nil
}

// AllCompatible is ResolveAllCompatible for an already parsed expression.
func AllCompatible(expr constraint.Expression, cat CandidateSource) ([]version.Version, error) {
	candidates := version.Unique(cat.Candidates())
	out := constraint.FilterCompatible(expr, candidates)
	if len(out) == 0 {
		return nil, &NoCompatibleVersionError{Expression: expr, Candidates: candidates}
	}
	return out, nil
}

// WithSource fills in the file name on errors that carry one.
func WithSource(err error, name string) error {
	if np, ok := err.(*NoPragmaFoundError); ok && np.Source == "" {
		return &NoPragmaFoundError{Source: name}
	}
	return err
}

// Describe renders versions as a comma separated list.
func Describe(vs []version.Version) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
