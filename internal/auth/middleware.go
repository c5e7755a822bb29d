package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talkdb/talkdb/internal/observability"
)

const (
	reasonMissing = "missing"
	reasonInvalid = "invalid"
)

// Middleware guards the translate, query and ask routes. The browser app
// sends X-API-Key; talkdbctl and scripts may use a bearer token instead.
// Rejections are logged without the presented key.
func Middleware(logger *slog.Logger, validator Validator) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, scheme := presentedKey(r)
			reason := ""
			switch {
			case apiKey == "":
				reason = reasonMissing
			case !validator.Validate(r.Context(), apiKey):
				reason = reasonInvalid
			}
			if reason == "" {
				next.ServeHTTP(w, r)
				return
			}

			observability.ObserveAuthRejection(reason)
			logger.WarnContext(r.Context(), "api key rejected",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.String("reason", reason),
				slog.String("scheme", scheme),
				slog.String("path", r.URL.Path),
			)
			rejectRequest(w, r, reason)
		})
	}
}

// presentedKey returns the key and the header it came from. X-API-Key wins
// when both are set.
func presentedKey(r *http.Request) (key, scheme string) {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key, "x-api-key"
	}
	token, ok := strings.CutPrefix(strings.TrimSpace(r.Header.Get("Authorization")), "Bearer ")
	if ok && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token), "bearer"
	}
	return "", "none"
}

func rejectRequest(w http.ResponseWriter, r *http.Request, reason string) {
	message := "API key is required"
	if reason == reasonInvalid {
		message = "API key is not valid"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="talkdb"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error_code": "UNAUTHORIZED",
		"message":    message,
		"retryable":  false,
		"context":    map[string]any{"reason": reason},
		"trace_id":   observability.TraceIDFromContext(r.Context()),
	})
}
