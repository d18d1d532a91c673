// Package extract implements the frame extraction stage.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/framedump/pkg/pipeline"
	"github.com/user/framedump/pkg/ports"
)

// Stage decodes a video and writes every frame as a numbered image file.
type Stage struct {
	opener   ports.SourceOpener
	encoder  ports.ImageEncoder
	fs       ports.FileSystem
	logger   ports.Logger
	progress ports.Progress
}

// NewStage creates a new extract stage.
func NewStage(opener ports.SourceOpener, encoder ports.ImageEncoder, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		opener:   opener,
		encoder:  encoder,
		fs:       fs,
		logger:   logger.WithComponent("extract"),
		progress: noProgress{},
	}
}

// WithProgress sets where per-frame progress is reported.
func (s *Stage) WithProgress(p ports.Progress) *Stage {
	if p == nil {
		p = noProgress{}
	}
	s.progress = p
	return s
}

type noProgress struct{}

func (noProgress) Start(int) {}
func (noProgress) Advance()  {}
func (noProgress) Finish()   {}

// Execute creates the output directory, then decodes the input frame by
// frame, writing each frame before the next one is decoded.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	result := pipeline.ExtractResult{}

	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrDirectoryCreate, input.OutputDir, err)
	}
	s.logger.Debug("Output directory ready: %s", input.OutputDir)

	src, err := s.opener.Open(ctx, input.InputPath)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result, err
		}
		return result, fmt.Errorf("%w: %s: %w", ErrSourceOpen, input.InputPath, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Warn("Failed to close source: %s", err)
			return
		}
		s.logger.Debug("Source closed")
	}()

	info := src.Info()
	result.Source = info
	s.logger.Debug("Opened %s with %s backend (%s, %dx%d)", input.InputPath, info.Backend, info.Codec, info.Width, info.Height)

	result.Digits = PadWidth(input.Digits, info.Frames)
	if info.Frames > 0 {
		s.logger.Debug("Expecting %d frames, padding to %d digits", info.Frames, result.Digits)
	}

	s.progress.Start(info.Frames)
	defer s.progress.Finish()

	ext := input.Format.Extension()
	index := 0
	var streamErr error
	for frame, err := range ports.Frames(ctx, src) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return result, err
			}
			// A decode failure ends the stream like end of file does.
			streamErr = fmt.Errorf("decode frame %d: %w", index, err)
			break
		}

		path := filepath.Join(input.OutputDir, FrameName(input.Prefix, index, result.Digits, ext))
		index++

		err := s.writeFrame(path, frame, input)
		s.progress.Advance()
		if err != nil {
			if input.OnWriteError != pipeline.WriteErrorSkip {
				return result, err
			}
			s.logger.Warn("Failed to write frame %d: %s", index-1, err)
			result.FramesSkipped++
			continue
		}

		result.FramesWritten++
		result.Paths = append(result.Paths, path)
		s.logger.Debug("Wrote frame %d to %s", index-1, path)
	}

	if se, ok := src.(ports.StreamErrorer); ok && streamErr == nil {
		streamErr = se.StreamErr()
	}
	if streamErr != nil {
		s.logger.Warn("Stream ended early: %s", streamErr)
	}

	return result, nil
}

func (s *Stage) writeFrame(path string, frame ports.VideoFrame, input pipeline.ExtractInput) error {
	if !input.Overwrite {
		exists, err := s.fs.Exists(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
		}
		if exists {
			return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, ErrOutputExists)
		}
	}

	data, err := s.encoder.Encode(frame.Image, input.Format, input.JPEGQuality)
	if err != nil {
		return fmt.Errorf("%w: %s: encode: %w", ErrOutputWrite, path, err)
	}
	if err := s.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}
	return nil
}
