// 指示: miu200521358
package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(&out)
	logger.SetLevel(LOG_LEVEL_INFO)

	logger.Debug("hidden %d", 1)
	logger.Info("shown %d", 2)
	logger.Warn("plain")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 2 || lines[0] != "shown 2" || lines[1] != "plain" {
		t.Fatalf("buffer mismatch: got=%v", lines)
	}
	if strings.Contains(out.String(), "hidden") {
		t.Fatalf("debug line should be filtered: out=%s", out.String())
	}
	if !strings.Contains(out.String(), "shown 2") {
		t.Fatalf("info line should be written: out=%s", out.String())
	}
}

func TestLoggerDebugLevel(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})
	if logger.IsDebugEnabled() {
		t.Fatalf("default level should not enable debug")
	}
	logger.SetLevel(LOG_LEVEL_DEBUG)
	if !logger.IsDebugEnabled() {
		t.Fatalf("debug level should enable debug")
	}
	child := logger.With("bake", "id")
	child.Debug("child")
	if lines := logger.MessageBuffer().Lines(); len(lines) != 1 || lines[0] != "child" {
		t.Fatalf("child should share buffer: got=%v", lines)
	}
	logger.MessageBuffer().Clear()
	if len(logger.MessageBuffer().Lines()) != 0 {
		t.Fatalf("buffer should be cleared")
	}
}

func TestSetDefaultLoggerSwap(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})
	prevLogger := DefaultLogger()
	SetDefaultLogger(logger)
	t.Cleanup(func() {
		SetDefaultLogger(prevLogger)
	})

	if DefaultLogger() != ILogger(logger) {
		t.Fatalf("default logger should be swapped")
	}
	SetDefaultLogger(nil)
	if DefaultLogger() != ILogger(logger) {
		t.Fatalf("nil should not replace default logger")
	}
}
