package talkdbctl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRunHealthCommand(t *testing.T) {
	var gotMethod, gotPath, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"-base-url", srv.URL, "-api-key", "k1", "health"}, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		Timeout: 2 * time.Second,
	})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr.String())
	}
	if gotMethod != http.MethodGet || gotPath != "/v1/health" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotAPIKey != "k1" {
		t.Fatalf("X-API-Key = %q", gotAPIKey)
	}
	if !strings.Contains(stdout.String(), `"status": "ok"`) {
		t.Fatalf("stdout = %s", stdout.String())
	}
}

func TestRunAskRendersTableAndBanner(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/ask" {
			t.Fatalf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"request": "titles by Alice",
			"sql": "SELECT posts.title FROM posts JOIN users ON posts.user_id = users.id WHERE users.name = 'Alice Johnson'",
			"outcome": {
				"status": "ok",
				"columns": ["title"],
				"rows": [["Healthy Living"], ["Book Reviews"]],
				"row_count": 2,
				"banner": {"level": "success", "message": "Query executed successfully!"}
			}
		}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"-base-url", srv.URL, "ask", "titles", "by", "Alice"}, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		NoColor: true,
	})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr.String())
	}
	if gotBody["prompt"] != "titles by Alice" {
		t.Fatalf("prompt = %q", gotBody["prompt"])
	}
	out := stdout.String()
	for _, want := range []string{"SELECT posts.title", "Query executed successfully!", "Healthy Living", "Book Reviews", "title"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stdout missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(stderr.String(), "Thinking... generating SQL query...") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunQueryShowsSQLErrorBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failed","columns":[],"rows":[],"message":"no such table: user","row_count":0,"banner":{"level":"error","message":"SQL Error: no such table: user"}}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"-base-url", srv.URL, "query", "SELECT * FROM user"}, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		NoColor: true,
	})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stdout.String()) != "SQL Error: no such table: user" {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestRunAskTranslationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error_code":"TRANSLATE_FAILED","message":"failed to translate query","context":{"details":"model api key is not configured"}}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"-base-url", srv.URL, "ask", "count users"}, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		NoColor: true,
	})
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "Translation failed: model api key is not configured") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunAskRequiresText(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	code := Run(context.Background(), []string{"-base-url", srv.URL, "ask", "   "}, Options{})
	if code != 2 {
		t.Fatalf("exit code = %d", code)
	}
	if called {
		t.Fatal("no request expected for blank text")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	if code := Run(context.Background(), []string{"lag"}, Options{Stderr: &stderr}); code != 2 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "usage: talkdbctl") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestFormatCell(t *testing.T) {
	tests := map[string]any{
		"NULL":   nil,
		"42":     float64(42),
		"2.5":    2.5,
		"abc":    "abc",
		"true":   true,
		"-7":     float64(-7),
		"1e+20":  1e20,
		"-1e+30": -1e30,
	}
	for want, value := range tests {
		if got := formatCell(value); got != want {
			t.Fatalf("formatCell(%#v) = %q, want %q", value, got, want)
		}
	}
}
