package query

import (
	"errors"
	"testing"
)

func TestCheckStatementReadOnly(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want error
	}{
		{"select", "SELECT * FROM users", nil},
		{"lowercase with trailing semicolons", "select count(*) from posts;; ", nil},
		{"cte", "WITH recent AS (SELECT * FROM posts) SELECT * FROM recent", nil},
		{"leading comment", "-- top users\nSELECT name FROM users", nil},
		{"parenthesized", "(SELECT 1)", nil},
		{"semicolon in literal", "SELECT * FROM posts WHERE title = 'a;b'", nil},
		{"escaped quote", "SELECT * FROM users WHERE name = 'O''Brien; Jr'", nil},
		{"empty", "  ;  ", ErrEmptyStatement},
		{"delete", "DELETE FROM users", ErrNotSelect},
		{"drop hidden behind comment", "/* harmless */ DROP TABLE users", ErrNotSelect},
		{"selector prefix word", "selectivity", ErrNotSelect},
		{"comment after semicolon", "SELECT name FROM users;\n-- all users", nil},
		{"block comment after semicolon", "SELECT name FROM users; /* done */ ", nil},
		{"trailing line comment", "SELECT name FROM users -- all users", nil},
		{"stacked", "SELECT 1; DELETE FROM users", ErrMultipleStatement},
		{"stacked behind comment", "SELECT 1; -- x\nDELETE FROM users", ErrMultipleStatement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatement(PolicyReadOnly, tt.sql)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckStatement(%q) = %v, want %v", tt.sql, err, tt.want)
			}
		})
	}
}

func TestStripTrailingSemicolons(t *testing.T) {
	tests := map[string]string{
		"SELECT 1;":                             "SELECT 1",
		"SELECT 1 ;\n-- trailing note":          "SELECT 1",
		"SELECT 1 /* note */ ;;":                "SELECT 1",
		"SELECT 1 -- note":                      "SELECT 1",
		"SELECT '--x;' AS v; ":                  "SELECT '--x;' AS v",
		"SELECT 1 -- a\nFROM t /* b */ WHERE 1": "SELECT 1 -- a\nFROM t /* b */ WHERE 1",
		" ; -- only a comment":                  "",
	}
	for in, want := range tests {
		if got := StripTrailingSemicolons(in); got != want {
			t.Fatalf("StripTrailingSemicolons(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckStatementUnrestrictedPassesThrough(t *testing.T) {
	if err := CheckStatement(PolicyUnrestricted, "DELETE FROM comments"); err != nil {
		t.Fatalf("CheckStatement() error = %v", err)
	}
	if err := CheckStatement(PolicyUnrestricted, "   "); !errors.Is(err, ErrEmptyStatement) {
		t.Fatalf("CheckStatement(blank) = %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	if policy, err := ParsePolicy(""); err != nil || policy != PolicyReadOnly {
		t.Fatalf("ParsePolicy(\"\") = %q, %v", policy, err)
	}
	if policy, err := ParsePolicy(" Unrestricted "); err != nil || policy != PolicyUnrestricted {
		t.Fatalf("ParsePolicy(Unrestricted) = %q, %v", policy, err)
	}
	if _, err := ParsePolicy("yolo"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestFailedOutcomeHasEmptyTable(t *testing.T) {
	outcome := Failed("no such table: user")
	if outcome.Columns == nil || outcome.Rows == nil {
		t.Fatalf("Failed() returned nil slices: %+v", outcome)
	}
	if outcome.RowCount() != 0 || outcome.Status != StatusFailed {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}
