package summarizer

import (
	"testing"
	"time"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder(t *testing.T) {
	summary := NewBuilder().
		WithSource(SourceInfo{Path: "in.mp4", Backend: "vidio", Width: 640, Height: 360}).
		WithOutput(OutputInfo{Directory: "frames", FramesWritten: 12}).
		WithDuration(1500 * time.Millisecond).
		Build()

	if summary.Source.Path != "in.mp4" || summary.Source.Backend != "vidio" {
		t.Errorf("unexpected source %+v", summary.Source)
	}
	if summary.Output.FramesWritten != 12 {
		t.Errorf("expected 12 frames, got %d", summary.Output.FramesWritten)
	}
	if summary.Timing.DurationMs != 1500 {
		t.Errorf("expected 1500 ms, got %d", summary.Timing.DurationMs)
	}
}
