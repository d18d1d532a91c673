// Package vidiosource decodes video files through ffmpeg using Vidio.
package vidiosource

import (
	"context"
	"image"
	"io"

	vidio "github.com/AlexEidt/Vidio"

	"github.com/user/framedump/pkg/ports"
)

// BackendName identifies this backend in ports.SourceInfo.
const BackendName = "vidio"

// Source reads RGBA frames from a Vidio video.
type Source struct {
	video *vidio.Video
	info  ports.SourceInfo
	rect  image.Rectangle
	fps   float64
	pos   int
	done  bool
}

// Open starts ffmpeg for the video at path.
func Open(path string) (*Source, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, err
	}
	return &Source{
		video: video,
		info: ports.SourceInfo{
			Backend: BackendName,
			Codec:   video.Codec(),
			Width:   video.Width(),
			Height:  video.Height(),
			Frames:  video.Frames(),
		},
		rect: image.Rect(0, 0, video.Width(), video.Height()),
		fps:  video.FPS(),
	}, nil
}

// Next reads the next frame into a fresh image.
// Vidio does not distinguish a decode failure from end of stream.
func (s *Source) Next(ctx context.Context) (ports.VideoFrame, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if s.done || !s.video.Read() {
		s.done = true
		return ports.VideoFrame{}, io.EOF
	}

	// The frame buffer is reused by the next Read.
	img := image.NewRGBA(s.rect)
	copy(img.Pix, s.video.FrameBuffer())

	frame := ports.VideoFrame{
		Image:       img,
		Position:    s.pos,
		TimestampMs: -1,
	}
	if s.fps > 0 {
		frame.TimestampMs = int(float64(s.pos) * 1000 / s.fps)
	}
	s.pos++
	return frame, nil
}

// Info returns the metadata ffprobe reported for the stream.
func (s *Source) Info() ports.SourceInfo {
	return s.info
}

// Close stops the ffmpeg process.
func (s *Source) Close() error {
	if s.video != nil {
		s.video.Close()
		s.video = nil
	}
	s.done = true
	return nil
}

// Ensure Source implements ports.FrameSource
var _ ports.FrameSource = (*Source)(nil)
