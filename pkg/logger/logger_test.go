package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newBuffered() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return NewWithWriters(&stdout, &stderr), &stdout, &stderr
}

func TestNew(t *testing.T) {
	// Test with DEBUG=true
	t.Setenv("DEBUG", "true")
	logger := New()
	if !logger.debugEnabled {
		t.Errorf("Expected debugEnabled to be true when DEBUG=true")
	}

	// Test with DEBUG=false
	t.Setenv("DEBUG", "false")
	logger = New()
	if logger.debugEnabled {
		t.Errorf("Expected debugEnabled to be false when DEBUG=false")
	}
}

func TestSetDebug(t *testing.T) {
	logger, _, _ := newBuffered()

	logger.SetDebug(true)
	if !logger.DebugEnabled() {
		t.Errorf("Expected debugEnabled to be true after SetDebug(true)")
	}

	logger.SetDebug(false)
	if logger.DebugEnabled() {
		t.Errorf("Expected debugEnabled to be false after SetDebug(false)")
	}
}

func TestDebugf(t *testing.T) {
	logger, stdout, stderr := newBuffered()

	logger.SetDebug(false)
	logger.Debugf("Test debug message")
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("Expected no output with debug disabled, got stdout=%q, stderr=%q", stdout, stderr)
	}

	logger.SetDebug(true)
	logger.Debugf("Test debug message")
	if stdout.Len() != 0 {
		t.Errorf("Expected no stdout output, got %q", stdout)
	}
	if !strings.Contains(stderr.String(), "level=debug") || !strings.Contains(stderr.String(), "Test debug message") {
		t.Errorf("Expected stderr to contain debug message, got %q", stderr)
	}
}

func TestLevelRouting(t *testing.T) {
	tests := []struct {
		name       string
		log        func(l *Logger)
		wantStdout string
		wantStderr string
	}{
		{"info", func(l *Logger) { l.Infof("Test info message") }, "level=info", ""},
		{"warn", func(l *Logger) { l.Warnf("Test warning message") }, "", "level=warning"},
		{"error", func(l *Logger) { l.Errorf("Test error message") }, "", "level=error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, stdout, stderr := newBuffered()
			tc.log(logger)

			if tc.wantStdout == "" && stdout.Len() != 0 {
				t.Errorf("Expected no stdout output, got %q", stdout)
			}
			if tc.wantStdout != "" && !strings.Contains(stdout.String(), tc.wantStdout) {
				t.Errorf("Expected stdout to contain %q, got %q", tc.wantStdout, stdout)
			}
			if tc.wantStderr == "" && stderr.Len() != 0 {
				t.Errorf("Expected no stderr output, got %q", stderr)
			}
			if tc.wantStderr != "" && !strings.Contains(stderr.String(), tc.wantStderr) {
				t.Errorf("Expected stderr to contain %q, got %q", tc.wantStderr, stderr)
			}
		})
	}
}

func TestWithField(t *testing.T) {
	logger, stdout, _ := newBuffered()

	logger.WithField("domain", "caferene.cz").Info("free")
	if !strings.Contains(stdout.String(), "domain=caferene.cz") {
		t.Errorf("Expected structured field in output, got %q", stdout)
	}
}

func TestAddFile(t *testing.T) {
	logger, _, _ := newBuffered()
	path := filepath.Join(t.TempDir(), "check-whois.log")

	if err := logger.AddFile(path); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}

	logger.Debugf("hidden body")
	logger.Infof("first")
	logger.SetDebug(true)
	logger.Debugf("raw body")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Writes after Close must not fail or reach the file.
	logger.Infof("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 records in log file, got %d: %q", len(lines), data)
	}

	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("log record is not JSON: %v", err)
	}
	if rec["msg"] != "raw body" || rec["level"] != "debug" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestAddFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check-whois.log")
	if err := os.WriteFile(path, []byte("{\"msg\":\"previous run\"}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	logger, _, _ := newBuffered()
	if err := logger.AddFile(path); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	logger.Infof("next run")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "previous run") || !strings.Contains(string(data), "next run") {
		t.Errorf("Expected log file to keep old records, got %q", data)
	}
}

func TestAddFile_BadPath(t *testing.T) {
	logger, _, _ := newBuffered()
	if err := logger.AddFile(filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Errorf("Expected error for unwritable log path")
	}
}
