// Package y4msource decodes uncompressed YUV4MPEG2 (.y4m) streams.
package y4msource

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Signature is the magic string every Y4M stream starts with.
const Signature = "YUV4MPEG2 "

var (
	// ErrNotY4M is returned when the stream does not start with Signature.
	ErrNotY4M = errors.New("y4msource: not a YUV4MPEG2 stream")

	// ErrBadHeader is returned when the stream header cannot be parsed.
	ErrBadHeader = errors.New("y4msource: malformed stream header")

	// ErrUnsupportedColorspace is returned for high bit depth colorspaces.
	ErrUnsupportedColorspace = errors.New("y4msource: unsupported colorspace")

	// ErrBadFrame is reported when a frame marker is malformed.
	ErrBadFrame = errors.New("y4msource: malformed frame")
)

// maxDimension bounds the picture width and height. 16384 is the largest
// level limit of the common video codecs.
const maxDimension = 16384

// Chroma is the chroma layout of a stream.
type Chroma int

const (
	Chroma420 Chroma = iota
	Chroma411
	Chroma422
	Chroma444
	Chroma444Alpha // 4:4:4 followed by a full-size alpha plane
	ChromaMono
)

// Rational is a fraction such as a frame rate.
type Rational struct {
	Num int
	Den int
}

// Header holds the stream parameters.
type Header struct {
	Width      int
	Height     int
	FrameRate  Rational // Zero if not specified
	Interlace  byte     // 'p', 't', 'b', 'm' or 0 if not specified
	Colorspace string   // Raw C parameter, "420jpeg" if not specified
	Chroma     Chroma
}

// ParseHeader parses a stream header line without its trailing newline.
func ParseHeader(line string) (Header, error) {
	if !strings.HasPrefix(line+" ", Signature) {
		return Header{}, ErrNotY4M
	}

	h := Header{Colorspace: "420jpeg"}
	for _, tok := range strings.Fields(line)[1:] {
		val := tok[1:]
		var err error
		switch tok[0] {
		case 'W':
			h.Width, err = strconv.Atoi(val)
		case 'H':
			h.Height, err = strconv.Atoi(val)
		case 'F':
			h.FrameRate, err = parseRational(val)
		case 'I':
			if len(val) > 0 {
				h.Interlace = val[0]
			}
		case 'C':
			h.Colorspace = val
		case 'A', 'X':
			// Pixel aspect and extensions do not affect decoding.
		default:
			err = fmt.Errorf("unknown parameter %q", tok)
		}
		if err != nil {
			return Header{}, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
	}

	if h.Width <= 0 || h.Height <= 0 || h.Width > maxDimension || h.Height > maxDimension {
		return Header{}, fmt.Errorf("%w: invalid dimensions %dx%d", ErrBadHeader, h.Width, h.Height)
	}

	chroma, err := parseChroma(h.Colorspace)
	if err != nil {
		return Header{}, err
	}
	h.Chroma = chroma

	return h, nil
}

// FrameSize returns the number of payload bytes per frame.
func (h Header) FrameSize() int {
	luma := h.Width * h.Height
	cw, ch := h.chromaSize()
	size := luma + 2*cw*ch
	if h.Chroma == Chroma444Alpha {
		size += luma
	}
	return size
}

func (h Header) chromaSize() (int, int) {
	switch h.Chroma {
	case Chroma420:
		return (h.Width + 1) / 2, (h.Height + 1) / 2
	case Chroma411:
		return (h.Width + 3) / 4, h.Height
	case Chroma422:
		return (h.Width + 1) / 2, h.Height
	case Chroma444, Chroma444Alpha:
		return h.Width, h.Height
	default:
		return 0, 0
	}
}

// SubsampleRatio maps the chroma layout to its image.YCbCr ratio.
// Mono streams have no chroma planes and report 4:4:4.
func (h Header) SubsampleRatio() image.YCbCrSubsampleRatio {
	switch h.Chroma {
	case Chroma420:
		return image.YCbCrSubsampleRatio420
	case Chroma411:
		return image.YCbCrSubsampleRatio411
	case Chroma422:
		return image.YCbCrSubsampleRatio422
	default:
		return image.YCbCrSubsampleRatio444
	}
}

func parseRational(s string) (Rational, error) {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return Rational{}, fmt.Errorf("invalid ratio %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Rational{}, err
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Rational{}, err
	}
	return Rational{Num: n, Den: d}, nil
}

func parseChroma(cs string) (Chroma, error) {
	switch cs {
	case "420", "420jpeg", "420paldv", "420mpeg2":
		return Chroma420, nil
	case "411":
		return Chroma411, nil
	case "422":
		return Chroma422, nil
	case "444":
		return Chroma444, nil
	case "444alpha":
		return Chroma444Alpha, nil
	case "mono":
		return ChromaMono, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedColorspace, cs)
	}
}
