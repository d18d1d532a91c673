package mocks

import (
	"context"
	"image"
	"image/color"
	"io"

	"github.com/user/framedump/pkg/ports"
)

// FrameSource is a scripted ports.FrameSource.
type FrameSource struct {
	Frames  []image.Image
	SrcInfo ports.SourceInfo

	// FailAt makes Next return Err instead of the frame at that position (-1 disables).
	FailAt int
	Err    error

	next       int
	NextCalls  int
	CloseCalls int
}

// NewFrameSource creates a source that yields n solid-colored frames of the given size.
// Frame i has red channel i so frames can be told apart after encoding.
func NewFrameSource(n, width, height int) *FrameSource {
	frames := make([]image.Image, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		c := color.RGBA{R: uint8(i), G: 0x40, B: 0x80, A: 0xff}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetRGBA(x, y, c)
			}
		}
		frames[i] = img
	}
	return &FrameSource{
		Frames:  frames,
		SrcInfo: ports.SourceInfo{Backend: "mock", Codec: "raw", Width: width, Height: height},
		FailAt:  -1,
	}
}

func (m *FrameSource) Next(ctx context.Context) (ports.VideoFrame, error) {
	m.NextCalls++
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if m.next == m.FailAt {
		m.next++
		return ports.VideoFrame{}, m.Err
	}
	if m.next >= len(m.Frames) {
		return ports.VideoFrame{}, io.EOF
	}
	frame := ports.VideoFrame{Image: m.Frames[m.next], Position: m.next, TimestampMs: -1}
	m.next++
	return frame, nil
}

func (m *FrameSource) Info() ports.SourceInfo {
	return m.SrcInfo
}

func (m *FrameSource) Close() error {
	m.CloseCalls++
	return nil
}

// SourceOpener returns a fixed FrameSource or error and records the opened paths.
type SourceOpener struct {
	Source *FrameSource
	Err    error
	Paths  []string
}

func (m *SourceOpener) Open(ctx context.Context, path string) (ports.FrameSource, error) {
	m.Paths = append(m.Paths, path)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Source, nil
}

var (
	_ ports.FrameSource  = (*FrameSource)(nil)
	_ ports.SourceOpener = (*SourceOpener)(nil)
)
