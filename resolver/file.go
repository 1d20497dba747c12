package resolver

import (
	"context"
	"errors"

	"github.com/willibrandon/gosolc/observability"
	"github.com/willibrandon/gosolc/pragma"
	"github.com/willibrandon/gosolc/version"
)

// Resolution is the outcome of resolving one source file.
type Resolution struct {
	File        string
	Declaration []string
	Recommended version.Version
	Compatible  []version.Version
}

// ResolveFile reads path and resolves its declarations against cat.
// The recommended version is the greatest compatible one.
func ResolveFile(ctx context.Context, path string, cat CandidateSource) (*Resolution, error) {
	candidates := cat.Candidates()
	_, span := observability.StartResolveSpan(ctx, path, len(candidates))

	res, err := resolveFile(path, cat)
	observability.ResolutionsTotal.WithLabelValues(resultLabel(err)).Inc()
	observability.EndSpanWithError(span, err)
	return res, err
}

func resolveFile(path string, cat CandidateSource) (*Resolution, error) {
	decls, err := pragma.ExtractFile(path)
	if err != nil {
		return nil, err
	}

	expr, err := ExpressionOf(decls)
	if err != nil {
		return nil, WithSource(err, path)
	}

	compatible, err := AllCompatible(expr, cat)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		File:        path,
		Declaration: decls,
		Recommended: compatible[len(compatible)-1],
		Compatible:  compatible,
	}, nil
}

func resultLabel(err error) string {
	var (
		npErr *NoPragmaFoundError
		ncErr *NoCompatibleVersionError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &npErr):
		return "no_pragma"
	case errors.As(err, &ncErr):
		return "no_compatible"
	default:
		return "error"
	}
}
