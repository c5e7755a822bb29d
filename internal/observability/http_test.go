package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTraceMiddlewarePreservesIncomingTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := TraceIDFromContext(r.Context()); got != "trace-1" {
			t.Fatalf("TraceIDFromContext() = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ready", nil)
	req.Header.Set(traceHeader, "trace-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(traceHeader); got != "trace-1" {
		t.Fatalf("trace header = %q", got)
	}
}

func TestTraceMiddlewareGeneratesTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TraceIDFromContext(r.Context()) == "" {
			t.Fatal("expected generated trace id")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Header().Get(traceHeader) == "" {
		t.Fatal("expected X-Trace-ID header")
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Fatalf("TraceIDFromContext() = %q", got)
	}
}

func TestTraceMiddlewareReplacesMalformedTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for _, incoming := range []string{"bad id with spaces", strings.Repeat("a", maxTraceIDBytes+1), "x\ny"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/ready", nil)
		req.Header.Set(traceHeader, incoming)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		got := rr.Header().Get(traceHeader)
		if got == "" || got == incoming {
			t.Fatalf("trace header for %q = %q, want a fresh id", incoming, got)
		}
	}
}

func TestLoggingMiddlewareLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{status: http.StatusOK, level: "INFO"},
		{status: http.StatusBadRequest, level: "WARN"},
		{status: http.StatusBadGateway, level: "ERROR"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte("{}"))
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/query", nil))

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if line["level"] != tc.level {
			t.Fatalf("status %d logged at %v, want %s", tc.status, line["level"], tc.level)
		}
		if line["status"] != float64(tc.status) || line["bytes"] != float64(2) {
			t.Fatalf("log line = %#v", line)
		}
	}
}

func TestRouteLabelUsesMuxPattern(t *testing.T) {
	mux := http.NewServeMux()
	var seen *http.Request
	mux.HandleFunc("GET /v1/schema", func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil {
		t.Fatal("handler was not called")
	}
	if got := routeLabel(req); got != "GET /v1/schema" {
		t.Fatalf("routeLabel() = %q", got)
	}
}

func TestRouteLabelCollapsesUnmatchedPaths(t *testing.T) {
	for _, path := range []string{"/assets/app.js", "/v1/unknown"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if got := routeLabel(req); got != "unmatched" {
			t.Fatalf("routeLabel(%q) = %q, want unmatched", path, got)
		}
	}
}
