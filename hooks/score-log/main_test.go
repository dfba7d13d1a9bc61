package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatLine(t *testing.T) {
	var req Request
	req.Event = "catch"
	req.SessionID = "s1"
	req.Round = 4
	req.Hand = "right"
	req.Score.Caught = 3
	req.Score.Missed = 1

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := formatLine(now, req)
	want := "2024-05-01T12:00:00Z session=s1 round=4 event=catch hand=right caught=3 missed=1"
	if got != want {
		t.Errorf("formatLine() = %q, want %q", got, want)
	}

	req.Hand = ""
	if got := formatLine(now, req); !strings.Contains(got, "hand=-") {
		t.Errorf("missing hand not rendered as '-': %q", got)
	}
}

func TestAppendLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.log")

	for _, line := range []string{"one", "two"} {
		if err := appendLine(path, line); err != nil {
			t.Fatalf("appendLine() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("file contents = %q", string(data))
	}
}
