package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvFillsUnsetVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TALKDB_DOTENV_TEST_KEY=from-file\nTALKDB_DOTENV_TEST_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("TALKDB_DOTENV_TEST_SET", "from-env")
	t.Setenv("TALKDB_DOTENV_TEST_KEY", "")
	if err := os.Unsetenv("TALKDB_DOTENV_TEST_KEY"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("TALKDB_DOTENV_TEST_KEY"); got != "from-file" {
		t.Fatalf("TALKDB_DOTENV_TEST_KEY = %q", got)
	}
	if got := os.Getenv("TALKDB_DOTENV_TEST_SET"); got != "from-env" {
		t.Fatalf("TALKDB_DOTENV_TEST_SET = %q, existing value must win", got)
	}
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) error = %v", err)
	}
}

func TestLoadDotEnvReportsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TALKDB_DOTENV_BAD='unterminated\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := LoadDotEnv(path); err == nil {
		t.Fatal("expected parse error")
	}
}
