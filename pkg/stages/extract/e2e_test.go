package extract

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framedump/pkg/adapters/imagecodec"
	"github.com/user/framedump/pkg/adapters/logger"
	"github.com/user/framedump/pkg/adapters/osfilesystem"
	"github.com/user/framedump/pkg/adapters/y4msource"
	"github.com/user/framedump/pkg/mocks"
	"github.com/user/framedump/pkg/pipeline"
	"github.com/user/framedump/pkg/ports"
)

func y4mOpener() ports.SourceOpener {
	return ports.SourceOpenerFunc(func(ctx context.Context, path string) (ports.FrameSource, error) {
		return y4msource.Open(path)
	})
}

func TestStage_EndToEnd_Y4M(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "clip.y4m")
	lumas := []uint8{40, 120, 200}
	if err := os.WriteFile(input, mocks.Y4M(16, 8, lumas), 0644); err != nil {
		t.Fatal(err)
	}

	stage := NewStage(y4mOpener(), imagecodec.New(), osfilesystem.New(), logger.NewNoop())

	params := pipeline.DefaultExtractInput()
	params.InputPath = input
	params.OutputDir = filepath.Join(dir, "out", "frames")

	result, err := stage.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FramesWritten != 3 {
		t.Fatalf("expected 3 frames, got %d", result.FramesWritten)
	}

	entries, err := os.ReadDir(params.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 files, got %d", len(entries))
	}

	for i, luma := range lumas {
		name := FrameName("frame_", i, 4, "png")
		if entries[i].Name() != name {
			t.Errorf("expected %s, got %s", name, entries[i].Name())
		}

		f, err := os.Open(filepath.Join(params.OutputDir, name))
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: decode png: %v", name, err)
		}

		if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
			t.Errorf("%s: expected 16x8, got %v", name, img.Bounds())
		}
		r, g, b, _ := img.At(5, 3).RGBA()
		if uint8(r>>8) != luma || uint8(g>>8) != luma || uint8(b>>8) != luma {
			t.Errorf("%s: expected gray %d, got %d,%d,%d", name, luma, r>>8, g>>8, b>>8)
		}
	}
}

func TestStage_EndToEnd_ZeroFrames(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.y4m")
	if err := os.WriteFile(input, mocks.Y4M(16, 8, nil), 0644); err != nil {
		t.Fatal(err)
	}

	stage := NewStage(y4mOpener(), imagecodec.New(), osfilesystem.New(), logger.NewNoop())
	params := pipeline.DefaultExtractInput()
	params.InputPath = input
	params.OutputDir = filepath.Join(dir, "frames")

	result, err := stage.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FramesWritten != 0 {
		t.Errorf("expected 0 frames, got %d", result.FramesWritten)
	}

	entries, err := os.ReadDir(params.OutputDir)
	if err != nil {
		t.Fatalf("expected output directory to exist: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, got %d entries", len(entries))
	}
}

func TestStage_EndToEnd_MissingInput(t *testing.T) {
	dir := t.TempDir()
	stage := NewStage(y4mOpener(), imagecodec.New(), osfilesystem.New(), logger.NewNoop())
	params := pipeline.DefaultExtractInput()
	params.InputPath = filepath.Join(dir, "missing.y4m")
	params.OutputDir = filepath.Join(dir, "frames")

	if _, err := stage.Execute(context.Background(), params); !errors.Is(err, ErrSourceOpen) {
		t.Fatalf("expected ErrSourceOpen, got %v", err)
	}

	entries, err := os.ReadDir(params.OutputDir)
	if err != nil {
		t.Fatalf("expected output directory to exist: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no frames, got %d entries", len(entries))
	}
}
