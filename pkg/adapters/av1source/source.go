package av1source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/framedump/pkg/adapters/codecdetect"
	"github.com/user/framedump/pkg/ports"
)

// BackendName identifies this backend in ports.SourceInfo.
const BackendName = "av1"

var (
	// ErrProgressiveMP4 is returned for non-fragmented MP4 files.
	ErrProgressiveMP4 = errors.New("av1source: progressive MP4 not supported, use fragmented MP4")

	// ErrNotAV1 is returned when the video track is not AV1.
	ErrNotAV1 = errors.New("av1source: video track is not AV1")
)

// Source decodes the samples of a fragmented MP4 video track one at a time.
type Source struct {
	file    *os.File
	mp4File *mp4.File
	decoder *Decoder
	logger  ports.Logger

	info      ports.SourceInfo
	trackID   uint32
	trex      *mp4.TrexBox
	timescale uint32

	frags   []*mp4.Fragment
	samples []mp4.FullSample
	sample  int // Index into samples
	decoded int // Samples consumed so far
	pos     int
	done    bool
	err     error
}

// Open parses the MP4 file at path and initializes the decoder.
func Open(path string, logger ports.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := newSource(f, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.file = f
	return src, nil
}

func newSource(reader io.ReadSeeker, logger ports.Logger) (*Source, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	info, err := codecdetect.FromFile(mp4File)
	if err != nil {
		return nil, err
	}
	if err := checkTrack(info); err != nil {
		return nil, err
	}

	s := &Source{
		mp4File:   mp4File,
		decoder:   NewDecoder(),
		logger:    logger.WithComponent("av1source"),
		trackID:   info.TrackID,
		timescale: info.Timescale,
		info: ports.SourceInfo{
			Backend: BackendName,
			Codec:   string(info.Codec),
			Width:   info.Width,
			Height:  info.Height,
			Frames:  info.Samples,
		},
	}
	if s.timescale == 0 {
		s.timescale = 1000
	}

	if mp4File.Init != nil && mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == s.trackID {
				s.trex = t
				break
			}
		}
	}
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof != nil {
				s.frags = append(s.frags, frag)
			}
		}
	}

	if err := s.decoder.Init(); err != nil {
		return nil, fmt.Errorf("init decoder: %w", err)
	}
	return s, nil
}

// checkTrack accepts only AV1 video in fragmented MP4.
func checkTrack(info codecdetect.Info) error {
	if info.Codec != codecdetect.CodecAV1 {
		return fmt.Errorf("%w: %s", ErrNotAV1, info.Codec)
	}
	if !info.Fragmented {
		return ErrProgressiveMP4
	}
	return nil
}

// Next decodes samples until one produces a picture. Samples that carry no
// picture are skipped. Any other decode failure ends the stream with io.EOF
// and is kept for StreamErr.
func (s *Source) Next(ctx context.Context) (ports.VideoFrame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return ports.VideoFrame{}, err
		}
		if s.done {
			return ports.VideoFrame{}, io.EOF
		}

		sample, ok, err := s.nextSample()
		if err != nil {
			s.done = true
			return ports.VideoFrame{}, err
		}
		if !ok {
			s.done = true
			return ports.VideoFrame{}, io.EOF
		}

		img, err := s.decoder.Decode(sample.Data)
		if errors.Is(err, ErrNoPicture) {
			s.logger.Debug("Skipped sample %d without picture", s.decoded-1)
			continue
		}
		if err != nil {
			s.done = true
			s.err = fmt.Errorf("sample %d: %w", s.decoded-1, err)
			return ports.VideoFrame{}, io.EOF
		}

		frame := ports.VideoFrame{
			Image:       img,
			Position:    s.pos,
			TimestampMs: int(sample.DecodeTime * 1000 / uint64(s.timescale)),
		}
		s.pos++
		return frame, nil
	}
}

// nextSample returns the next sample of the video track in decode order.
func (s *Source) nextSample() (mp4.FullSample, bool, error) {
	for s.sample >= len(s.samples) {
		if len(s.frags) == 0 {
			return mp4.FullSample{}, false, nil
		}
		frag := s.frags[0]
		s.frags = s.frags[1:]
		if !s.hasTrack(frag) {
			continue
		}
		samples, err := frag.GetFullSamples(s.trex)
		if err != nil {
			return mp4.FullSample{}, false, fmt.Errorf("get samples: %w", err)
		}
		s.samples = samples
		s.sample = 0
	}

	sample := s.samples[s.sample]
	s.sample++
	s.decoded++
	return sample, true, nil
}

func (s *Source) hasTrack(frag *mp4.Fragment) bool {
	for _, traf := range frag.Moof.Trafs {
		if traf.Tfhd.TrackID == s.trackID {
			return true
		}
	}
	return false
}

// StreamErr returns the decode failure that ended the stream, if any.
func (s *Source) StreamErr() error {
	return s.err
}

// Info returns the stream metadata. Frames is the sample count, an upper
// bound on the number of pictures.
func (s *Source) Info() ports.SourceInfo {
	return s.info
}

// Close releases the decoder and the file.
func (s *Source) Close() error {
	s.done = true
	s.frags = nil
	s.samples = nil
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// Ensure Source implements ports.FrameSource and ports.StreamErrorer
var (
	_ ports.FrameSource   = (*Source)(nil)
	_ ports.StreamErrorer = (*Source)(nil)
)
