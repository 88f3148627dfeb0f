package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func reset() {
	SetVerbose(false)
	_ = SetFormat(FormatConsole)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	// Reset state after test
	defer reset()

	// Initially not verbose
	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	// Enable verbose
	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	// Disable verbose
	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	output := buf.String()
	if !strings.HasSuffix(output, "\tDEBUG\ttest message arg\n") {
		t.Errorf("unexpected output: %q", output)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Section("hidden")

	if buf.Len() > 0 {
		t.Error("expected no debug output when verbose is disabled")
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Test Section")

	output := buf.String()
	if !strings.HasSuffix(output, "\tDEBUG\t=== Test Section ===\n") {
		t.Errorf("unexpected section output: %q", output)
	}
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("info message %d", 42)

	output := buf.String()
	if !strings.HasSuffix(output, "\tINFO\tinfo message 42\n") {
		t.Errorf("unexpected info output: %q", output)
	}
}

func TestWarnAndError(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("warning message")
	Error("error %s", "message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "\tWARN\twarning message") {
		t.Errorf("unexpected warn output: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "\tERROR\terror message") {
		t.Errorf("unexpected error output: %q", lines[1])
	}
}

func TestSetFormat_JSON(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	if err := SetFormat(FormatJSON); err != nil {
		t.Fatalf("SetFormat: %v", err)
	}

	L().Info("run finished", zap.String("handle", "h1"), zap.Int("items", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if entry["msg"] != "run finished" || entry["level"] != "INFO" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["handle"] != "h1" || entry["items"] != float64(3) {
		t.Errorf("missing fields: %v", entry)
	}
}

func TestSetFormat_Unknown(t *testing.T) {
	defer reset()

	if err := SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	// Run concurrent operations
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}
	// Test passes if no race conditions
}
