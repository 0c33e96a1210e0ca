package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		l := New(&bytes.Buffer{}, tt.level, "json")
		if !l.Enabled(context.Background(), tt.want) {
			t.Errorf("%q: level %v should be enabled", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && l.Enabled(context.Background(), tt.want-4) {
			t.Errorf("%q: level below %v should be disabled", tt.level, tt.want)
		}
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("route fetched", "routes", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json output: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "route fetched" || rec["routes"] != float64(2) {
		t.Errorf("unexpected record %v", rec)
	}

	buf.Reset()
	New(&buf, "info", "TEXT").Info("route fetched", "routes", 2)
	if !strings.Contains(buf.String(), "msg=\"route fetched\" routes=2") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}
