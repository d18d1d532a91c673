package y4msource

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framedump/pkg/mocks"
	"github.com/user/framedump/pkg/ports"
)

func TestSource_ReadsAllFrames(t *testing.T) {
	data := mocks.Y4M(4, 2, []uint8{10, 20, 30})
	src, err := NewSource(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	var lumas []uint8
	for frame, err := range ports.Frames(ctx, src) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if frame.Position != len(lumas) {
			t.Errorf("expected position %d, got %d", len(lumas), frame.Position)
		}
		img, ok := frame.Image.(*image.YCbCr)
		if !ok {
			t.Fatalf("expected *image.YCbCr, got %T", frame.Image)
		}
		if img.Bounds() != image.Rect(0, 0, 4, 2) {
			t.Errorf("unexpected bounds %v", img.Bounds())
		}
		lumas = append(lumas, img.Y[0])
	}

	if !bytes.Equal(lumas, []uint8{10, 20, 30}) {
		t.Errorf("expected lumas [10 20 30], got %v", lumas)
	}
	if src.StreamErr() != nil {
		t.Errorf("expected clean end, got %v", src.StreamErr())
	}
}

func TestSource_Timestamps(t *testing.T) {
	src, err := NewSource(bytes.NewReader(mocks.Y4M(2, 2, []uint8{0, 0, 0})), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	want := []int{0, 33, 66}
	for i, w := range want {
		frame, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if frame.TimestampMs != w {
			t.Errorf("frame %d: expected %dms, got %dms", i, w, frame.TimestampMs)
		}
	}
}

func TestSource_ZeroFrames(t *testing.T) {
	src, err := NewSource(bytes.NewReader(mocks.Y4M(8, 8, nil)), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if src.StreamErr() != nil {
		t.Errorf("expected no stream error, got %v", src.StreamErr())
	}
}

func TestSource_TruncatedFrameEndsStream(t *testing.T) {
	data := mocks.Y4M(4, 4, []uint8{1, 2})
	data = data[:len(data)-5]

	src, err := NewSource(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := src.Next(ctx); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF for truncated frame, got %v", err)
	}
	if !errors.Is(src.StreamErr(), ErrBadFrame) {
		t.Errorf("expected ErrBadFrame, got %v", src.StreamErr())
	}
	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after end, got %v", err)
	}
}

func TestSource_BadFrameMarker(t *testing.T) {
	data := append(mocks.Y4M(2, 2, []uint8{7}), []byte("GARBAGE\n")...)
	src, err := NewSource(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	count := 0
	for _, err := range ports.Frames(ctx, src) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 frame, got %d", count)
	}
	if !errors.Is(src.StreamErr(), ErrBadFrame) {
		t.Errorf("expected ErrBadFrame, got %v", src.StreamErr())
	}
}

func TestSource_Mono(t *testing.T) {
	data := []byte("YUV4MPEG2 W3 H2 Cmono\nFRAME\n\x01\x02\x03\x04\x05\x06")
	src, err := NewSource(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := src.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	gray, ok := frame.Image.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", frame.Image)
	}
	if gray.GrayAt(2, 1).Y != 6 {
		t.Errorf("expected pixel value 6, got %d", gray.GrayAt(2, 1).Y)
	}
}

func TestSource_Alpha(t *testing.T) {
	// 2x1 pixels: Y, Cb, Cr and A planes of two bytes each.
	data := []byte("YUV4MPEG2 W2 H1 C444alpha\nFRAME\n\x10\x11\x80\x80\x80\x80\xff\x40")
	src, err := NewSource(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := src.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	img, ok := frame.Image.(*image.NYCbCrA)
	if !ok {
		t.Fatalf("expected *image.NYCbCrA, got %T", frame.Image)
	}
	if img.Y[1] != 0x11 || img.A[1] != 0x40 {
		t.Errorf("unexpected planes Y=%v A=%v", img.Y, img.A)
	}
	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if src.StreamErr() != nil {
		t.Errorf("expected clean end, got %v", src.StreamErr())
	}
}

func TestSource_411(t *testing.T) {
	// 4x1 luma, one Cb and one Cr sample.
	data := []byte("YUV4MPEG2 W4 H1 C411\nFRAME\n\x01\x02\x03\x04\x50\x60")
	src, err := NewSource(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := src.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	img, ok := frame.Image.(*image.YCbCr)
	if !ok {
		t.Fatalf("expected *image.YCbCr, got %T", frame.Image)
	}
	if img.SubsampleRatio != image.YCbCrSubsampleRatio411 {
		t.Errorf("expected 4:1:1, got %v", img.SubsampleRatio)
	}
	if img.Cb[0] != 0x50 || img.Cr[0] != 0x60 {
		t.Errorf("unexpected chroma Cb=%v Cr=%v", img.Cb, img.Cr)
	}
}

func TestNewSource_OversizedHeader(t *testing.T) {
	data := []byte("YUV4MPEG2 W3037000500 H3037000500 C420jpeg\nFRAME\n\x00")
	if _, err := NewSource(bytes.NewReader(data), nil); !errors.Is(err, ErrBadHeader) {
		t.Errorf("expected ErrBadHeader, got %v", err)
	}
}

func TestSource_CancelledContext(t *testing.T) {
	src, err := NewSource(bytes.NewReader(mocks.Y4M(2, 2, []uint8{1})), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewSource_NotY4M(t *testing.T) {
	tests := map[string][]byte{
		"empty":  nil,
		"binary": []byte("\x00\x00\x00\x18ftypisom\n"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewSource(bytes.NewReader(data), nil)
			if !errors.Is(err, ErrNotY4M) {
				t.Errorf("expected ErrNotY4M, got %v", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.y4m")
	if err := os.WriteFile(path, mocks.Y4M(16, 8, []uint8{50, 60}), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	info := src.Info()
	if info.Backend != BackendName || info.Width != 16 || info.Height != 8 {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Frames != 0 {
		t.Errorf("expected unknown frame count, got %d", info.Frames)
	}

	if err := src.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.y4m"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
