package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "omrsheet.log")
	logger, err := New(path, "debug")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Named("alerts").Debug("alert shown", zap.String("id", "a1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	if entry["message"] != "alert shown" || entry["severity"] != "DEBUG" || entry["logger"] != "alerts" || entry["id"] != "a1" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	t.Setenv(levelEnv, "")
	if got := parseLevel("").Level(); got != zapcore.InfoLevel {
		t.Fatalf("expected info default, got %v", got)
	}
	if got := parseLevel("bogus").Level(); got != zapcore.InfoLevel {
		t.Fatalf("expected info for invalid level, got %v", got)
	}
	t.Setenv(levelEnv, "warn")
	if got := parseLevel("").Level(); got != zapcore.WarnLevel {
		t.Fatalf("expected env level, got %v", got)
	}
	if got := parseLevel("ERROR").Level(); got != zapcore.ErrorLevel {
		t.Fatalf("expected explicit level, got %v", got)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New("", ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
