// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"errors"
	"image"
	"io"
	"iter"
)

// VideoFrame is a single decoded picture in decode order.
type VideoFrame struct {
	Image       image.Image
	Position    int // Zero-based position in the decoded stream
	TimestampMs int // Presentation time in milliseconds, -1 if unknown
}

// SourceInfo describes what a backend knows about a stream after opening it.
type SourceInfo struct {
	Backend string // Name of the decoding backend (e.g. "vidio", "y4m")
	Codec   string // Codec name as reported by the backend, may be empty
	Width   int
	Height  int
	Frames  int // Expected frame count, 0 if unknown
}

// FrameSource is an opened video stream that yields decoded frames.
//
// A FrameSource is owned by a single caller and is not safe for concurrent use.
// Frames are produced exactly once; there is no rewinding.
type FrameSource interface {
	// Next decodes the next frame. It returns io.EOF when the stream is exhausted.
	// Backends that cannot distinguish a decode failure from end of stream
	// report both as io.EOF.
	Next(ctx context.Context) (VideoFrame, error)

	// Info returns stream metadata gathered when the source was opened.
	Info() SourceInfo

	// Close releases the decoder and any underlying file handles or processes.
	Close() error
}

// SourceOpener opens a FrameSource for a video file.
type SourceOpener interface {
	Open(ctx context.Context, path string) (FrameSource, error)
}

// SourceOpenerFunc is a function adapter for SourceOpener.
type SourceOpenerFunc func(ctx context.Context, path string) (FrameSource, error)

// Open implements SourceOpener.
func (f SourceOpenerFunc) Open(ctx context.Context, path string) (FrameSource, error) {
	return f(ctx, path)
}

// Frames returns the frames of src as a lazy, single-use sequence.
//
// The sequence ends quietly at io.EOF. Any other error from Next, including
// context cancellation, is yielded once as the final element.
func Frames(ctx context.Context, src FrameSource) iter.Seq2[VideoFrame, error] {
	return func(yield func(VideoFrame, error) bool) {
		for {
			if err := ctx.Err(); err != nil {
				yield(VideoFrame{}, err)
				return
			}
			frame, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(VideoFrame{}, err)
				return
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}

// StreamErrorer is implemented by sources that end the stream early on a
// decode failure. StreamErr returns that failure, or nil after a clean end.
type StreamErrorer interface {
	StreamErr() error
}
