package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" INFO ":  InfoLevel,
		"warning": WarnLevel,
		"Error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLoggerLevelsAndTargets(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	l := New(&out, &errOut, WarnLevel)
	l.now = func() time.Time { return time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC) }

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("slow request %s", "/course")
	l.Error("store failed: %v", "disk full")

	if got, want := out.String(), "[2025-06-14T09:30:00.000Z] WARN: slow request /course\n"; got != want {
		t.Fatalf("out = %q, want %q", got, want)
	}
	if got := errOut.String(); !strings.Contains(got, "ERROR: store failed: disk full") {
		t.Fatalf("errOut = %q, want error line", got)
	}

	l.SetLevel(DebugLevel)
	l.Debug("visible")
	if !strings.Contains(out.String(), "DEBUG: visible") {
		t.Fatalf("debug line missing after SetLevel: %q", out.String())
	}
}
