package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInitLogger_ValidLevels(t *testing.T) {
	for _, level := range Levels {
		t.Run(level, func(t *testing.T) {
			if err := InitLogger(level, &bytes.Buffer{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if GetLogger() == nil {
				t.Fatal("GetLogger() returned nil")
			}
		})
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := InitLogger("verbose", nil); err == nil {
		t.Error("expected error for invalid log level, got nil")
	}
}

func TestGetLogger_BeforeInit(t *testing.T) {
	globalLogger = nil

	if logger := GetLogger(); logger != slog.Default() {
		t.Error("GetLogger() should return slog.Default() when not initialized")
	}
}

func TestInitLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitLogger("warn", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	GetLogger().Info("hidden")
	GetLogger().Warn("shown", "track", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "track=2") {
		t.Errorf("warn message missing: %q", out)
	}
}
