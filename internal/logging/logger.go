package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Service     string
	Environment string
	// Level overrides the environment's default level: debug, info, warn or error.
	Level string
	// Output receives the JSON records. The shell owns stdout, so callers
	// running it point this at stderr.
	Output io.Writer
}

var logger = slog.Default()

// Init installs the process logger. Records are written as JSON to
// opts.Output and forwarded to the global OTel logger provider, so telemetry
// must be set up first.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	otelHandler := otelslog.NewHandler(opts.Service, otelslog.WithLoggerProvider(global.GetLoggerProvider()))
	jsonHandler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: levelFor(opts)})

	logger = slog.New(fanout{otelHandler, jsonHandler}).With(
		slog.String("service", opts.Service),
		slog.String("environment", opts.Environment),
	)
	slog.SetDefault(logger)
}

func levelFor(opts Options) slog.Level {
	var l slog.Level
	if opts.Level != "" && l.UnmarshalText([]byte(strings.TrimSpace(opts.Level))) == nil {
		return l
	}
	if opts.Environment == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func Info(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelInfo, msg, args)
}

func Warn(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelWarn, msg, args)
}

func Error(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelError, msg, args)
}

// log tags the record with the trace and span ids of the active span, which
// ties a garage log line to the admit or exit span that produced it.
func log(ctx context.Context, level slog.Level, msg string, args []any) {
	if !logger.Enabled(ctx, level) {
		return
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		args = append(args,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	logger.Log(ctx, level, msg, args...)
}

// fanout hands each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
