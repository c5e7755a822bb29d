package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// NewRunID names a fixture run after its UTC start time.
func NewRunID(at time.Time) string {
	return at.UTC().Format("20060102T150405Z")
}

// BuildFixtureRunPrefix returns "<prefix>/<runID>/".
func BuildFixtureRunPrefix(prefix, runID string) (string, error) {
	if err := validatePathComponent(prefix, "fixture prefix"); err != nil {
		return "", err
	}
	if err := validatePathComponent(runID, "run id"); err != nil {
		return "", err
	}
	return path.Join(prefix, runID) + "/", nil
}

// BuildFixturePath returns "<prefix>/<runID>/<table>.parquet".
func BuildFixturePath(prefix, runID, table string) (string, error) {
	runPrefix, err := BuildFixtureRunPrefix(prefix, runID)
	if err != nil {
		return "", err
	}
	if err := validatePathComponent(table, "table name"); err != nil {
		return "", err
	}
	return runPrefix + table + ".parquet", nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
