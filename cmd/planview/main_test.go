package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/messerjon/TetrisClock/internal/glyph"
)

func TestRunPlanOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, 1, 8, false, 1); err != nil {
		t.Fatalf("run() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1 -> 8: 10 adds, 2 removes") {
		t.Fatalf("summary missing:\n%s", out)
	}
	if strings.Contains(out, "frame ") {
		t.Fatalf("trace printed without -trace:\n%s", out)
	}
}

func TestRunTraceEndsOnTarget(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, blank, 7, true, 1000); err != nil {
		t.Fatalf("run() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "blank -> 7") {
		t.Fatalf("summary missing:\n%s", out)
	}

	last := out[strings.LastIndex(out, "frame "):]
	if !strings.Contains(last, "(idle)") {
		t.Fatalf("last frame not idle:\n%s", last)
	}
	if got := strings.Count(last, "#"); got != glyph.Must(7).Count() {
		t.Fatalf("last frame shows %d blocks, want %d:\n%s", got, glyph.Must(7).Count(), last)
	}
	if strings.ContainsAny(last, "*.") {
		t.Fatalf("last frame still animating:\n%s", last)
	}
}

func TestRunRejectsBadDigit(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, 10, 1, false, 1); !errors.Is(err, glyph.ErrInvalidDigit) {
		t.Fatalf("run(10) = %v, want ErrInvalidDigit", err)
	}
}
