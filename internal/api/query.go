package api

import (
	"net/http"
	"strings"

	"github.com/talkdb/talkdb/internal/assist"
	"github.com/talkdb/talkdb/internal/query"
)

type queryRequest struct {
	SQL      string `json:"sql"`
	RowLimit int    `json:"row_limit"`
}

// outcomeResponse is returned with HTTP 200 for every status; callers
// branch on Status.
type outcomeResponse struct {
	Status     query.Status  `json:"status"`
	Columns    []string      `json:"columns"`
	Rows       [][]any       `json:"rows"`
	Message    string        `json:"message,omitempty"`
	RowCount   int           `json:"row_count"`
	DurationMs int64         `json:"duration_ms"`
	Banner     assist.Banner `json:"banner"`
}

func newOutcomeResponse(outcome query.Outcome, banner assist.Banner) outcomeResponse {
	return outcomeResponse{
		Status:     outcome.Status,
		Columns:    outcome.Columns,
		Rows:       outcome.Rows,
		Message:    outcome.Message,
		RowCount:   outcome.RowCount(),
		DurationMs: outcome.Duration.Milliseconds(),
		Banner:     banner,
	}
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.QueryEngine == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query engine is not configured", false, nil)
		return
	}

	var request queryRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}
	if request.RowLimit < 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_ROW_LIMIT", "row_limit must be >= 0", false, nil)
		return
	}

	outcome := deps.QueryEngine.Execute(r.Context(), query.Request{SQL: request.SQL, RowLimit: request.RowLimit})
	writeJSON(w, http.StatusOK, newOutcomeResponse(outcome, assist.BannerFor(outcome)))
}
