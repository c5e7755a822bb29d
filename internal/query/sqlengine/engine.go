// Package sqlengine executes statements directly against the configured
// blog database.
package sqlengine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talkdb/talkdb/internal/observability"
	"github.com/talkdb/talkdb/internal/query"
	"github.com/talkdb/talkdb/internal/store"
)

type Engine struct {
	Dialect store.Dialect
	DSN     string
	Policy  query.Policy
	// RowLimit caps SELECT results when a request does not set its own.
	RowLimit int
	Logger   *slog.Logger
}

func NewEngine(dialect store.Dialect, dsn string, policy query.Policy, rowLimit int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Engine{Dialect: dialect, DSN: dsn, Policy: policy, RowLimit: rowLimit, Logger: logger}
}

// Execute opens a fresh connection, runs the statement and closes the
// connection again. Database errors are reported in the Outcome, not as a
// Go error.
func (e *Engine) Execute(ctx context.Context, request query.Request) query.Outcome {
	start := time.Now()
	outcome := e.execute(ctx, request)
	outcome.Duration = time.Since(start)

	observability.ObserveQuery(string(outcome.Status), outcome.RowCount(), outcome.Duration)
	e.Logger.DebugContext(ctx, "statement executed",
		slog.String("status", string(outcome.Status)),
		slog.Int("rows", outcome.RowCount()),
		slog.Duration("elapsed", outcome.Duration),
	)
	return outcome
}

func (e *Engine) execute(ctx context.Context, request query.Request) query.Outcome {
	if err := query.CheckStatement(e.Policy, request.SQL); err != nil {
		return query.Rejected(err.Error())
	}

	sqlText := query.StripTrailingSemicolons(request.SQL)
	rowLimit := request.RowLimit
	if rowLimit <= 0 {
		rowLimit = e.RowLimit
	}
	if rowLimit > 0 && query.IsSelect(sqlText) {
		sqlText = fmt.Sprintf("SELECT * FROM (%s\n) AS q LIMIT %d", sqlText, rowLimit)
	}

	db, err := store.Open(ctx, store.Options{
		Dialect:  e.Dialect,
		DSN:      e.DSN,
		ReadOnly: e.Policy != query.PolicyUnrestricted,
	})
	if err != nil {
		return query.Failed(err.Error())
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryxContext(ctx, sqlText)
	if err != nil {
		return query.Failed(err.Error())
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Failed(err.Error())
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return query.Failed(err.Error())
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Failed(err.Error())
	}
	return query.Succeeded(columns, resultRows)
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		case time.Time:
			normalized[i] = typed.UTC().Format(time.RFC3339)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
