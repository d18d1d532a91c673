package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/framedump/pkg/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleWriters(ports.LevelInfo, &out, &errOut)

	log.Debug("hidden %d", 1)
	log.Info("Done! Extracted %d frames.", 3)
	log.Warn("Failed to write frame %d: %s", 2, "disk full")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "Extracted 3 frames.") {
		t.Errorf("expected completion message on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "disk full") {
		t.Errorf("expected warning on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriters(ports.LevelDebug, &out, &out)

	log.WithComponent("extract").Debug("Source closed")

	if got := out.String(); got != "[extract] Source closed\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriters(ports.LevelQuiet, &out, &out)

	log.Error("Failed to open source: %s", "missing")

	if out.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", out.String())
	}
}
