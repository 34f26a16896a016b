package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandlerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo)

	Debugf("hidden %d", 1)
	Infof("book fetched market=%s", "1.207303789")
	Warnf("slow")
	Errorf("boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level:\n%s", out)
	}
	if !strings.Contains(out, "] book fetched market=1.207303789\n") {
		t.Fatalf("missing info line:\n%s", out)
	}
	if !strings.Contains(out, "] WARN: slow\n") {
		t.Fatalf("missing warn prefix:\n%s", out)
	}
	if !strings.Contains(out, "] ERROR: boom\n") {
		t.Fatalf("missing error prefix:\n%s", out)
	}
}

func TestPrettyHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelDebug)

	L().With("market", "1.2").Info("placing", "selection", 1408)

	if !strings.Contains(buf.String(), "placing market=1.2 selection=1408") {
		t.Fatalf("attrs not rendered: %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLatencyTrackerPercentiles(t *testing.T) {
	lt := NewLatencyTracker(3)
	for _, ms := range []int{50, 10, 30, 20} {
		lt.Record(msDur(ms))
	}
	if lt.Count() != 3 {
		t.Fatalf("expected 3 samples kept, got %d", lt.Count())
	}
	// kept: 10, 30, 20
	if lt.P50() != msDur(20) {
		t.Fatalf("P50 = %s, want 20ms", lt.P50())
	}
	// idx = int(2*0.99) = 1
	if lt.P99() != msDur(20) {
		t.Fatalf("P99 = %s, want 20ms", lt.P99())
	}
}

func msDur(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
