// Package observability carries the logging, metrics and tracing plumbing
// shared by the gosolc packages and CLI.
package observability

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"
	"github.com/willibrandon/mtlog/sinks"
)

// Logger is the structured logger used throughout gosolc.
// Messages are mtlog message templates: "Installed {Version} to {Path}".
type Logger interface {
	Verbose(messageTemplate string, args ...any)
	VerboseContext(ctx context.Context, messageTemplate string, args ...any)

	Debug(messageTemplate string, args ...any)
	DebugContext(ctx context.Context, messageTemplate string, args ...any)

	Info(messageTemplate string, args ...any)
	InfoContext(ctx context.Context, messageTemplate string, args ...any)

	Warn(messageTemplate string, args ...any)
	WarnContext(ctx context.Context, messageTemplate string, args ...any)

	Error(messageTemplate string, args ...any)
	ErrorContext(ctx context.Context, messageTemplate string, args ...any)

	// ForContext creates a child logger that attaches key=value to every event.
	ForContext(key string, value any) Logger
}

// LogLevel represents log verbosity level
type LogLevel int

const (
	VerboseLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[string]LogLevel{
	"verbose": VerboseLevel,
	"debug":   DebugLevel,
	"info":    InfoLevel,
	"warn":    WarnLevel,
	"warning": WarnLevel,
	"error":   ErrorLevel,
}

// ParseLogLevel converts a level name from flags or config into a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

func (l LogLevel) String() string {
	switch l {
	case VerboseLevel:
		return "verbose"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

type mtlogAdapter struct {
	logger core.Logger
}

// NewLogger creates a logger writing rendered events to output.
func NewLogger(output io.Writer, level LogLevel) Logger {
	opts := []mtlog.Option{
		mtlog.WithSink(sinks.NewConsoleSinkWithWriter(output)),
		mtlog.WithTimestamp(),
	}

	switch level {
	case VerboseLevel:
		opts = append(opts, mtlog.Verbose())
	case DebugLevel:
		opts = append(opts, mtlog.Debug())
	case InfoLevel:
		opts = append(opts, mtlog.Information())
	case WarnLevel:
		opts = append(opts, mtlog.Warning())
	default:
		opts = append(opts, mtlog.Error())
	}

	return &mtlogAdapter{logger: mtlog.New(opts...)}
}

func (a *mtlogAdapter) Verbose(tmpl string, args ...any) { a.logger.Verbose(tmpl, args...) }
func (a *mtlogAdapter) VerboseContext(ctx context.Context, tmpl string, args ...any) {
	a.logger.VerboseContext(ctx, tmpl, args...)
}
func (a *mtlogAdapter) Debug(tmpl string, args ...any) { a.logger.Debug(tmpl, args...) }
func (a *mtlogAdapter) DebugContext(ctx context.Context, tmpl string, args ...any) {
	a.logger.DebugContext(ctx, tmpl, args...)
}
func (a *mtlogAdapter) Info(tmpl string, args ...any) { a.logger.Info(tmpl, args...) }
func (a *mtlogAdapter) InfoContext(ctx context.Context, tmpl string, args ...any) {
	a.logger.InfoContext(ctx, tmpl, args...)
}
func (a *mtlogAdapter) Warn(tmpl string, args ...any) { a.logger.Warn(tmpl, args...) }
func (a *mtlogAdapter) WarnContext(ctx context.Context, tmpl string, args ...any) {
	a.logger.WarnContext(ctx, tmpl, args...)
}
func (a *mtlogAdapter) Error(tmpl string, args ...any) { a.logger.Error(tmpl, args...) }
func (a *mtlogAdapter) ErrorContext(ctx context.Context, tmpl string, args ...any) {
	a.logger.ErrorContext(ctx, tmpl, args...)
}

func (a *mtlogAdapter) ForContext(key string, value any) Logger {
	return &mtlogAdapter{logger: a.logger.ForContext(key, value)}
}

type nullLogger struct{}

// NewNullLogger creates a logger that discards all output.
// Library constructors fall back to it when no logger is configured.
func NewNullLogger() Logger {
	return nullLogger{}
}

func (nullLogger) Verbose(string, ...any)                         {}
func (nullLogger) VerboseContext(context.Context, string, ...any) {}
func (nullLogger) Debug(string, ...any)                           {}
func (nullLogger) DebugContext(context.Context, string, ...any)   {}
func (nullLogger) Info(string, ...any)                            {}
func (nullLogger) InfoContext(context.Context, string, ...any)    {}
func (nullLogger) Warn(string, ...any)                            {}
func (nullLogger) WarnContext(context.Context, string, ...any)    {}
func (nullLogger) Error(string, ...any)                           {}
func (nullLogger) ErrorContext(context.Context, string, ...any)   {}
func (n nullLogger) ForContext(string, any) Logger                { return n }

// OrNull returns l, or a null logger when l is nil.
func OrNull(l Logger) Logger {
	if l == nil {
		return NewNullLogger()
	}
	return l
}
