package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/talkdb/talkdb/internal/assist"
	"github.com/talkdb/talkdb/internal/blog"
	"github.com/talkdb/talkdb/internal/nl2sql"
)

type translateRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Request string          `json:"request"`
	SQL     string          `json:"sql"`
	Outcome outcomeResponse `json:"outcome"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	schema := deps.Schema
	if strings.TrimSpace(schema) == "" {
		schema = blog.SchemaContext
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schema": schema,
		"tables": blog.Tables,
	})
}

func handleTranslate(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Translator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TRANSLATE_NOT_CONFIGURED", "query translation is not configured", false, nil)
		return
	}

	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid translation request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	}

	result, err := deps.Translator.Translate(r.Context(), nl2sql.Request{
		NaturalLanguage: strings.TrimSpace(req.Prompt),
		Schema:          deps.Schema,
	})
	if err != nil {
		writeTranslateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sql":      result.SQL,
		"provider": result.Provider,
		"model":    result.Model,
	})
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Shell == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "ask is not configured", false, nil)
		return
	}

	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	exchange, err := deps.Shell.Submit(r.Context(), req.Prompt)
	switch {
	case errors.Is(err, assist.ErrEmptyRequest):
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	case err != nil:
		writeTranslateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{
		Request: exchange.Request,
		SQL:     exchange.SQL,
		Outcome: newOutcomeResponse(exchange.Outcome, exchange.Banner),
	})
}

func writeTranslateError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, nl2sql.ErrMissingAPIKey) {
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "model API key is not configured", false, map[string]any{"details": err.Error()})
		return
	}
	writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to translate query", true, map[string]any{"details": err.Error()})
}
