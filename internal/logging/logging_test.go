package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":  log.DebugLevel,
		" INFO ": log.InfoLevel,
		"error":  log.ErrorLevel,
		"warn":   log.WarnLevel,
		"":       log.WarnLevel,
		"bogus":  log.WarnLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "warn"})
	logger.Debug("hidden")
	logger.Warn("shown", "path", "/tmp/x")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "/tmp/x") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "error", Verbose: true, Format: "json"})
	logger.Debug("loaded", "count", 3)
	if !strings.Contains(buf.String(), `"msg":"loaded"`) {
		t.Fatalf("expected json debug record, got %q", buf.String())
	}
}
