package gstsource

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framedump/pkg/adapters/logger"
	"github.com/user/framedump/pkg/mocks"
	"github.com/user/framedump/pkg/ports"
)

// Requires GStreamer with the y4mdec element (gst-plugins-bad).
func requireGStreamer(t *testing.T) {
	t.Helper()
	if os.Getenv("FRAMEDUMP_GST") != "1" {
		t.Skip("set FRAMEDUMP_GST=1 to run GStreamer tests")
	}
}

func TestSource_DecodesY4M(t *testing.T) {
	requireGStreamer(t)

	path := filepath.Join(t.TempDir(), "clip.y4m")
	if err := os.WriteFile(path, mocks.Y4M(32, 16, []uint8{40, 120, 200}), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path, logger.NewNoop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Backend != BackendName || info.Width != 32 || info.Height != 16 {
		t.Errorf("unexpected info %+v", info)
	}

	count := 0
	for frame, err := range ports.Frames(context.Background(), src) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if frame.Position != count {
			t.Errorf("expected position %d, got %d", count, frame.Position)
		}
		if _, ok := frame.Image.(*image.RGBA); !ok {
			t.Errorf("expected *image.RGBA, got %T", frame.Image)
		}
		count++
	}

	if count != 3 {
		t.Errorf("expected 3 frames, got %d", count)
	}
	if err := src.StreamErr(); err != nil {
		t.Errorf("unexpected stream error: %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mp4"), logger.NewNoop()); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
