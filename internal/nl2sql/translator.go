package nl2sql

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("model api key is not configured")
	ErrEmptySQL      = errors.New("model returned empty SQL")
)

type Request struct {
	NaturalLanguage string `json:"natural_language"`
	// Schema overrides the default schema context when non-empty.
	Schema string `json:"schema,omitempty"`
}

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}
