package storage

import (
	"testing"
	"time"
)

func TestBuildFixturePath(t *testing.T) {
	key, err := BuildFixturePath("fixtures", "20260219T090500Z", "posts")
	if err != nil {
		t.Fatalf("BuildFixturePath() error = %v", err)
	}
	want := "fixtures/20260219T090500Z/posts.parquet"
	if key != want {
		t.Fatalf("BuildFixturePath() = %q, want %q", key, want)
	}
}

func TestNewRunIDUsesUTC(t *testing.T) {
	ts := time.Date(2026, time.February, 19, 4, 5, 0, 0, time.FixedZone("x", -5*3600))
	if got := NewRunID(ts); got != "20260219T090500Z" {
		t.Fatalf("NewRunID() = %q", got)
	}
}

func TestBuildFixturePathRejectsInvalidComponents(t *testing.T) {
	cases := [][3]string{
		{"", "run", "users"},
		{"fixtures", "../run", "users"},
		{"fixtures", "run", "users/../../etc"},
		{"fixtures", "run", ""},
	}
	for _, tc := range cases {
		if _, err := BuildFixturePath(tc[0], tc[1], tc[2]); err == nil {
			t.Fatalf("BuildFixturePath(%q, %q, %q) expected error", tc[0], tc[1], tc[2])
		}
	}
}
