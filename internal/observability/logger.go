package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/talkdb/talkdb/internal/config"
)

type ctxKey string

const traceIDKey ctxKey = "trace_id"

const redacted = "[redacted]"

// sensitiveKeys are attribute names whose values never reach the log
// output, whatever the caller passes.
var sensitiveKeys = map[string]struct{}{
	"api_key":       {},
	"authorization": {},
	"x-api-key":     {},
	"dsn":           {},
	"secret_key":    {},
}

// NewLogger builds the process logger. Every record carries the service,
// profile and database driver so api and seed output can be told apart.
func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	opts := &slog.HandlerOptions{
		Level:       cfg.Observability.LogLevel,
		ReplaceAttr: redactSensitive,
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
		slog.String("db_driver", cfg.Database.Driver),
	)
}

func redactSensitive(_ []string, attr slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok && attr.Value.String() != "" {
		return slog.String(attr.Key, redacted)
	}
	return attr
}

// DiscardLogger is used by packages whose callers did not supply a logger.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	value, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return ""
	}
	return value
}
