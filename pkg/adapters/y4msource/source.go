package y4msource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/user/framedump/pkg/ports"
)

// BackendName identifies this backend in ports.SourceInfo.
const BackendName = "y4m"

// maxLineLength bounds header and frame marker lines.
const maxLineLength = 4096

// Source reads frames from a Y4M stream.
type Source struct {
	r      *bufio.Reader
	closer io.Closer
	header Header
	pos    int
	done   bool
	err    error
}

// Open opens the Y4M file at path and parses its header.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := NewSource(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// NewSource parses the stream header from r. closer may be nil.
func NewSource(r io.Reader, closer io.Closer) (*Source, error) {
	br := bufio.NewReader(r)
	sig, err := br.Peek(len(Signature))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if string(sig) != Signature {
		return nil, ErrNotY4M
	}

	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	header, err := ParseHeader(line)
	if err != nil {
		return nil, err
	}
	return &Source{r: br, closer: closer, header: header}, nil
}

// Next decodes the next frame. A missing or truncated frame ends the stream;
// the cause, if any, is available from StreamErr.
func (s *Source) Next(ctx context.Context) (ports.VideoFrame, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if s.done {
		return ports.VideoFrame{}, io.EOF
	}

	img, err := s.readFrame()
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return ports.VideoFrame{}, io.EOF
	}

	frame := ports.VideoFrame{
		Image:       img,
		Position:    s.pos,
		TimestampMs: s.timestampMs(s.pos),
	}
	s.pos++
	return frame, nil
}

func (s *Source) readFrame() (image.Image, error) {
	line, err := readLine(s.r)
	if err != nil {
		return nil, err
	}
	if line != "FRAME" && !strings.HasPrefix(line, "FRAME ") {
		return nil, fmt.Errorf("%w at position %d: %q", ErrBadFrame, s.pos, truncate(line, 16))
	}

	rect := image.Rect(0, 0, s.header.Width, s.header.Height)

	if s.header.Chroma == ChromaMono {
		img := image.NewGray(rect)
		if err := readPlane(s.r, img.Pix, s.pos); err != nil {
			return nil, err
		}
		return img, nil
	}

	if s.header.Chroma == Chroma444Alpha {
		img := image.NewNYCbCrA(rect, image.YCbCrSubsampleRatio444)
		for _, plane := range [][]byte{img.Y, img.Cb, img.Cr, img.A} {
			if err := readPlane(s.r, plane, s.pos); err != nil {
				return nil, err
			}
		}
		return img, nil
	}

	img := image.NewYCbCr(rect, s.header.SubsampleRatio())
	for _, plane := range [][]byte{img.Y, img.Cb, img.Cr} {
		if err := readPlane(s.r, plane, s.pos); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// StreamErr returns the decode failure that ended the stream, if any.
func (s *Source) StreamErr() error {
	return s.err
}

// Info returns the stream metadata. Y4M has no frame count in its header.
func (s *Source) Info() ports.SourceInfo {
	return ports.SourceInfo{
		Backend: BackendName,
		Codec:   "rawvideo/" + s.header.Colorspace,
		Width:   s.header.Width,
		Height:  s.header.Height,
	}
}

// Close closes the underlying reader.
func (s *Source) Close() error {
	s.done = true
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

func (s *Source) timestampMs(pos int) int {
	rate := s.header.FrameRate
	if rate.Num <= 0 || rate.Den <= 0 {
		return -1
	}
	return int(int64(pos) * 1000 * int64(rate.Den) / int64(rate.Num))
}

func readPlane(r io.Reader, dst []byte, pos int) error {
	if _, err := io.ReadFull(r, dst); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: frame %d truncated", ErrBadFrame, pos)
		}
		return err
	}
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return "", fmt.Errorf("%w: unterminated line", ErrBadFrame)
			}
			return "", err
		}
		if b == '\n' {
			return sb.String(), nil
		}
		if sb.Len() >= maxLineLength {
			return "", fmt.Errorf("%w: line exceeds %d bytes", ErrBadFrame, maxLineLength)
		}
		sb.WriteByte(b)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Ensure Source implements ports.FrameSource
var _ ports.FrameSource = (*Source)(nil)
