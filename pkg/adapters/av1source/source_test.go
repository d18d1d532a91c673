package av1source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framedump/pkg/adapters/codecdetect"
	"github.com/user/framedump/pkg/adapters/logger"
	"github.com/user/framedump/pkg/mocks"
)

func TestCheckTrack(t *testing.T) {
	tests := []struct {
		name string
		info codecdetect.Info
		want error
	}{
		{"fragmented av1", codecdetect.Info{Codec: codecdetect.CodecAV1, Fragmented: true}, nil},
		{"progressive av1", codecdetect.Info{Codec: codecdetect.CodecAV1}, ErrProgressiveMP4},
		{"h264", codecdetect.Info{Codec: codecdetect.CodecH264, Fragmented: true}, ErrNotAV1},
		{"unknown", codecdetect.Info{Codec: codecdetect.CodecUnknown}, ErrNotAV1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTrack(tt.info)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewSource_SamplesWithoutPictureAreSkipped(t *testing.T) {
	samples := [][]byte{{0x12, 0x00}, {0x12, 0x00}, {0x12, 0x00}}
	data, err := mocks.FragmentedMP4("av01", 64, 48, samples)
	if err != nil {
		t.Fatalf("build mp4: %v", err)
	}

	src, err := newSource(bytes.NewReader(data), logger.NewNoop())
	if err != nil {
		t.Fatalf("newSource failed: %v", err)
	}
	defer src.Close()

	info := src.Info()
	if info.Backend != BackendName || info.Codec != "av1" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Width != 64 || info.Height != 48 || info.Frames != 3 {
		t.Errorf("expected 64x48 with 3 samples, got %+v", info)
	}

	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if src.decoded != 3 {
		t.Errorf("expected 3 samples consumed, got %d", src.decoded)
	}
	if err := src.StreamErr(); err != nil {
		t.Errorf("expected no stream error, got %v", err)
	}
}

func TestSource_DecodeErrorEndsStream(t *testing.T) {
	samples := [][]byte{{0x12, 0x00}, {}, {0x12, 0x00}}
	data, err := mocks.FragmentedMP4("av01", 64, 48, samples)
	if err != nil {
		t.Fatalf("build mp4: %v", err)
	}

	src, err := newSource(bytes.NewReader(data), logger.NewNoop())
	if err != nil {
		t.Fatalf("newSource failed: %v", err)
	}
	defer src.Close()

	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if src.decoded != 2 {
		t.Errorf("expected stream to end at sample 2, consumed %d", src.decoded)
	}
	if err := src.StreamErr(); !errors.Is(err, ErrEmptySample) {
		t.Errorf("expected ErrEmptySample from StreamErr, got %v", err)
	}

	// The stream stays ended.
	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after end, got %v", err)
	}
	if src.decoded != 2 {
		t.Errorf("expected no more samples consumed, got %d", src.decoded)
	}
}

func TestNewSource_NotAV1(t *testing.T) {
	data, err := mocks.FragmentedMP4("avc1", 64, 48, [][]byte{{0x00}})
	if err != nil {
		t.Fatalf("build mp4: %v", err)
	}

	if _, err := newSource(bytes.NewReader(data), logger.NewNoop()); !errors.Is(err, ErrNotAV1) {
		t.Errorf("expected ErrNotAV1, got %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"), logger.NewNoop())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestSource_CancelledContext(t *testing.T) {
	data, err := mocks.FragmentedMP4("av01", 16, 16, [][]byte{{0x12, 0x00}})
	if err != nil {
		t.Fatalf("build mp4: %v", err)
	}
	src, err := newSource(bytes.NewReader(data), logger.NewNoop())
	if err != nil {
		t.Fatalf("newSource failed: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
