package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	log.Info("test_message_from_logging_test")
	_ = log.Sync()

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "test_message_from_logging_test") || !strings.Contains(string(b), `"ts"`) {
		t.Fatalf("unexpected log contents: %s", b)
	}
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "chatty")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Debug("hidden_debug_line")
	log.Info("visible_info_line")
	_ = log.Sync()

	b, _ := os.ReadFile(filepath.Join(dir, FileName))
	if strings.Contains(string(b), "hidden_debug_line") {
		t.Fatalf("debug line written at info level")
	}
	if !strings.Contains(string(b), "visible_info_line") {
		t.Fatalf("info line missing: %s", b)
	}
}
