package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name for gosolc operations
const TracerName = "github.com/willibrandon/gosolc"

// Common attribute keys
const (
	AttrVersion    = attribute.Key("solc.version")
	AttrPlatform   = attribute.Key("solc.platform")
	AttrSourceURL  = attribute.Key("solc.source.url")
	AttrOperation  = attribute.Key("solc.operation")
	AttrCacheHit   = attribute.Key("solc.cache.hit")
	AttrSourceFile = attribute.Key("solc.source.file")
	AttrCount      = attribute.Key("solc.count")
)

// StartIndexFetchSpan starts a span for loading a release index.
func StartIndexFetchSpan(ctx context.Context, platform, sourceURL string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "index.fetch",
		trace.WithAttributes(
			AttrPlatform.String(platform),
			AttrSourceURL.String(sourceURL),
			AttrOperation.String("fetch_index"),
		),
	)
}

// RecordCacheHit records cache hit/miss on the current span
func RecordCacheHit(ctx context.Context, hit bool) {
	SetAttributes(ctx, AttrCacheHit.Bool(hit))
}

// StartDownloadSpan starts a span for a compiler artifact download.
func StartDownloadSpan(ctx context.Context, version, sourceURL string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "artifact.download",
		trace.WithAttributes(
			AttrVersion.String(version),
			AttrSourceURL.String(sourceURL),
			AttrOperation.String("download"),
		),
	)
}

// StartInstallSpan starts a span for installing or removing one version.
func StartInstallSpan(ctx context.Context, operation, version string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "installer."+operation,
		trace.WithAttributes(
			AttrVersion.String(version),
			AttrOperation.String(operation),
		),
	)
}

// StartVerifySpan starts a span for verifying installed binaries.
func StartVerifySpan(ctx context.Context, count int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "catalog.verify",
		trace.WithAttributes(
			AttrCount.Int(count),
			AttrOperation.String("verify"),
		),
	)
}

// StartResolveSpan starts a span for resolving a source file's pragma.
func StartResolveSpan(ctx context.Context, sourceFile string, candidates int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "resolver.resolve",
		trace.WithAttributes(
			AttrSourceFile.String(sourceFile),
			AttrCount.Int(candidates),
			AttrOperation.String("resolve"),
		),
	)
}

// RecordRetry records a retry attempt on the current span
func RecordRetry(ctx context.Context, attempt int, err error) {
	attrs := []attribute.KeyValue{attribute.Int("retry.attempt", attempt)}
	if err != nil {
		attrs = append(attrs, attribute.String("retry.error", err.Error()))
	}
	AddEvent(ctx, "retry", attrs...)
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
