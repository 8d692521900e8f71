package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log := build(Options{}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("app_id", "123").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "app_id") || !strings.Contains(out, "123") {
		t.Fatalf("info message missing from output: %q", out)
	}
}

func TestBuildDebugWritesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "check.log")
	log := build(Options{Debug: true, File: path}, &buf)

	log.Debug().Msg("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("log file missing message: %q", data)
	}
	if !strings.Contains(buf.String(), "to file") {
		t.Fatalf("console missing message: %q", buf.String())
	}
}

func TestGetLoggerBeforeInit(t *testing.T) {
	// Must not panic before InitLogger has run.
	Info().Msg("discarded")
}
