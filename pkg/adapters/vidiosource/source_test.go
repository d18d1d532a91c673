package vidiosource

import (
	"context"
	"errors"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/user/framedump/pkg/ports"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found in PATH", bin)
		}
	}
}

func makeClip(t *testing.T, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	cmd := exec.Command("ffmpeg", "-y", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-frames:v", strconv.Itoa(frames), "-pix_fmt", "yuv420p", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg failed: %v\n%s", err, out)
	}
	return path
}

func TestSource_ReadsAllFrames(t *testing.T) {
	requireFFmpeg(t)
	path := makeClip(t, 5)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Backend != BackendName {
		t.Errorf("expected backend %s, got %s", BackendName, info.Backend)
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("expected 64x48, got %dx%d", info.Width, info.Height)
	}

	var images []image.Image
	for frame, err := range ports.Frames(context.Background(), src) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if frame.Position != len(images) {
			t.Errorf("expected position %d, got %d", len(images), frame.Position)
		}
		images = append(images, frame.Image)
	}

	if len(images) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(images))
	}

	// Each frame owns its pixels.
	first := images[0].(*image.RGBA)
	last := images[4].(*image.RGBA)
	if &first.Pix[0] == &last.Pix[0] {
		t.Error("frames share a pixel buffer")
	}
}

func TestSource_NextAfterClose(t *testing.T) {
	requireFFmpeg(t)
	src, err := Open(makeClip(t, 2))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after Close, got %v", err)
	}
	if src.Info().Width != 64 {
		t.Errorf("expected info to survive Close, got %+v", src.Info())
	}
}

func TestOpen_Missing(t *testing.T) {
	requireFFmpeg(t)
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
