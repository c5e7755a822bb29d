package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talkdb/talkdb/internal/auth"
	"github.com/talkdb/talkdb/internal/config"
	"github.com/talkdb/talkdb/internal/store"
)

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"service":"talkdb-api"`) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestReadyEndpointReturns503WhenDependencyFails(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		Readiness: func(context.Context) error {
			return errors.New("dependency down")
		},
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if body["error_code"] != "NOT_READY" || body["retryable"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestCheckDatabaseAgainstSQLite(t *testing.T) {
	dialect, err := store.Lookup("sqlite")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	dsn := filepath.Join(t.TempDir(), "blog.db")

	if err := CheckDatabase(dialect, dsn)(context.Background()); err == nil {
		t.Fatal("expected error for missing read-only database file")
	}

	db, err := store.Open(context.Background(), store.Options{Dialect: dialect, DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	_ = db.Close()

	if err := CheckDatabase(dialect, dsn)(context.Background()); err != nil {
		t.Fatalf("CheckDatabase() error = %v", err)
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		AuthMiddleware: auth.Middleware(nil, auth.NewStaticKeys("k1")),
	})

	unauthResp := httptest.NewRecorder()
	h.ServeHTTP(unauthResp, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if unauthResp.Code != http.StatusUnauthorized {
		t.Fatalf("unauth status = %d", unauthResp.Code)
	}

	authReq := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	authReq.Header.Set("X-API-Key", "k1")
	authResp := httptest.NewRecorder()
	h.ServeHTTP(authResp, authReq)
	if authResp.Code != http.StatusOK {
		t.Fatalf("auth status = %d", authResp.Code)
	}

	healthResp := httptest.NewRecorder()
	h.ServeHTTP(healthResp, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if healthResp.Code != http.StatusOK {
		t.Fatalf("health should stay public, status = %d", healthResp.Code)
	}
}

func TestSchemaEndpointReturnsSchemaContext(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Schema string   `json:"schema"`
		Tables []string `json:"tables"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body.Schema, "Table: posts(id, user_id, title, content, created_at)") {
		t.Fatalf("schema = %q", body.Schema)
	}
	if len(body.Tables) != 3 {
		t.Fatalf("tables = %v", body.Tables)
	}
}

func TestCombineReadinessChecksStopsOnFirstFailure(t *testing.T) {
	order := make([]int, 0, 3)
	combined := CombineReadinessChecks(
		func(context.Context) error {
			order = append(order, 1)
			return nil
		},
		nil,
		func(context.Context) error {
			order = append(order, 2)
			return errors.New("boom")
		},
		func(context.Context) error {
			order = append(order, 3)
			return nil
		},
	)

	if err := combined(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("execution order = %#v", order)
	}
}

func TestUIHandlerServesNonAPIRoutes(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		UI: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "<html>ok</html>")
		}),
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ok") {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	cfg, err := config.Load("talkdb-api", mapLookup(env))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return cfg
}

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
