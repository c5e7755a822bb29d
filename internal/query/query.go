// Package query defines how generated SQL is executed against the blog
// database and how the result is reported back.
package query

import (
	"context"
	"time"
)

type Status string

const (
	// StatusOK means the statement ran; Rows may still be empty.
	StatusOK Status = "ok"
	// StatusFailed carries the database error message.
	StatusFailed Status = "failed"
	// StatusRejected means the policy refused the statement before it ran.
	StatusRejected Status = "rejected"
)

type Request struct {
	SQL      string
	RowLimit int
}

// Outcome is the result of one execution. Columns and Rows are never nil so
// a failed run renders as an empty table.
type Outcome struct {
	Status   Status        `json:"status"`
	Columns  []string      `json:"columns"`
	Rows     [][]any       `json:"rows"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"-"`
}

func (o Outcome) RowCount() int {
	return len(o.Rows)
}

func Succeeded(columns []string, rows [][]any) Outcome {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return Outcome{Status: StatusOK, Columns: columns, Rows: rows}
}

func Failed(message string) Outcome {
	return Outcome{Status: StatusFailed, Columns: []string{}, Rows: [][]any{}, Message: message}
}

func Rejected(message string) Outcome {
	return Outcome{Status: StatusRejected, Columns: []string{}, Rows: [][]any{}, Message: message}
}

type Engine interface {
	Execute(ctx context.Context, request Request) Outcome
}
