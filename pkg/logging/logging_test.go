package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo, "json"))

	logger.Debug("hidden")
	logger.Info("Recorded expense", "expense_id", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at INFO")
	}
	if !strings.Contains(out, `"expense_id":3`) {
		t.Errorf("expected JSON attribute, got %s", out)
	}
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelDebug, ""))

	logger.Debug("Restored ledger", "users", 2)

	if !strings.Contains(buf.String(), "Restored ledger") {
		t.Errorf("expected message in output, got %s", buf.String())
	}
}
