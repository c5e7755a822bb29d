// Package assist drives one natural-language request through translation
// and execution and decides what the user is shown.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/talkdb/talkdb/internal/nl2sql"
	"github.com/talkdb/talkdb/internal/observability"
	"github.com/talkdb/talkdb/internal/query"
)

var ErrEmptyRequest = errors.New("request text is empty")

type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateDisplayed  State = "displayed"
)

// Phase marks the transient status indicators shown while processing.
type Phase string

const (
	PhaseThinking Phase = "Thinking... generating SQL query..."
	PhaseRunning  Phase = "Running SQL on database..."
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Banner struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Exchange is everything displayed for one submission.
type Exchange struct {
	Request string        `json:"request"`
	SQL     string        `json:"sql"`
	Outcome query.Outcome `json:"outcome"`
	Banner  Banner        `json:"banner"`
}

// BannerFor maps an execution outcome to the banner shown above the table.
func BannerFor(outcome query.Outcome) Banner {
	switch outcome.Status {
	case query.StatusOK:
		if outcome.RowCount() > 0 {
			return Banner{Level: LevelSuccess, Message: "Query executed successfully!"}
		}
		return Banner{Level: LevelWarning, Message: "No results found."}
	case query.StatusRejected:
		return Banner{Level: LevelError, Message: "Statement rejected: " + outcome.Message}
	default:
		return Banner{Level: LevelError, Message: "SQL Error: " + outcome.Message}
	}
}

func translationBanner(err error) Banner {
	return Banner{Level: LevelError, Message: "Translation failed: " + err.Error()}
}

// Shell serializes submissions; one request is processed at a time.
type Shell struct {
	translator nl2sql.Translator
	engine     query.Engine
	log        *slog.Logger
	// OnPhase, when set, is called as each status indicator appears.
	OnPhase func(Phase)
	// Schema is sent with every translation; empty means the translator's
	// default schema context.
	Schema string

	mu    sync.Mutex
	state State
}

func NewShell(translator nl2sql.Translator, engine query.Engine, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Shell{translator: translator, engine: engine, log: logger, state: StateIdle}
}

func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit translates text, executes the resulting statement and returns what
// should be displayed. Blank text returns ErrEmptyRequest without leaving the
// current state. A translation failure returns the error together with an
// Exchange carrying the error banner.
func (s *Shell) Submit(ctx context.Context, text string) (Exchange, error) {
	request := strings.TrimSpace(text)
	if request == "" {
		return Exchange{}, ErrEmptyRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateProcessing
	defer func() { s.state = StateDisplayed }()

	exchange := Exchange{Request: request, Outcome: query.Succeeded(nil, nil)}

	s.phase(PhaseThinking)
	start := time.Now()
	translated, err := s.translator.Translate(ctx, nl2sql.Request{NaturalLanguage: request, Schema: s.Schema})
	observability.ObserveTranslate(err, time.Since(start))
	if err != nil {
		s.log.WarnContext(ctx, "translation failed", slog.Any("error", err))
		exchange.Outcome = query.Failed(err.Error())
		exchange.Banner = translationBanner(err)
		return exchange, fmt.Errorf("translate: %w", err)
	}
	exchange.SQL = translated.SQL

	s.phase(PhaseRunning)
	exchange.Outcome = s.engine.Execute(ctx, query.Request{SQL: translated.SQL})
	exchange.Banner = BannerFor(exchange.Outcome)
	s.log.InfoContext(ctx, "request answered",
		slog.String("status", string(exchange.Outcome.Status)),
		slog.Int("rows", exchange.Outcome.RowCount()),
	)
	return exchange, nil
}

func (s *Shell) phase(p Phase) {
	if s.OnPhase != nil {
		s.OnPhase(p)
	}
}
