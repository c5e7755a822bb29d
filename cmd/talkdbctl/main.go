package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/talkdb/talkdb/internal/cli/talkdbctl"
	"github.com/talkdb/talkdb/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ignoring .env: %v\n", err)
	}
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("TALKDB_CLI_TIMEOUT")), 90*time.Second)
	options := talkdbctl.Options{
		BaseURL: envOr("TALKDB_API_URL", "http://localhost:8501"),
		APIKey:  strings.TrimSpace(os.Getenv("TALKDB_API_KEY")),
		Timeout: timeout,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		NoColor: os.Getenv("NO_COLOR") != "",
	}

	code := talkdbctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid TALKDB_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
