// Package smartsource opens a video file with a decoding backend that is
// either chosen explicitly or detected from the file contents.
package smartsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/framedump/pkg/adapters/av1source"
	"github.com/user/framedump/pkg/adapters/codecdetect"
	"github.com/user/framedump/pkg/adapters/gstsource"
	"github.com/user/framedump/pkg/adapters/vidiosource"
	"github.com/user/framedump/pkg/adapters/y4msource"
	"github.com/user/framedump/pkg/ports"
)

// Backend names a decoding backend.
type Backend string

const (
	// BackendAuto selects a backend from the file signature.
	BackendAuto Backend = "auto"
	// BackendVidio decodes through ffmpeg; it handles any container ffmpeg reads.
	BackendVidio Backend = "vidio"
	// BackendGStreamer decodes with a GStreamer decodebin pipeline.
	BackendGStreamer Backend = "gstreamer"
	// BackendAV1 decodes fragmented AV1 MP4 with libaom.
	BackendAV1 Backend = "av1"
	// BackendY4M reads uncompressed YUV4MPEG2 streams.
	BackendY4M Backend = "y4m"
)

// ErrUnsupportedBackend is returned for unknown backend names.
var ErrUnsupportedBackend = errors.New("smartsource: unsupported backend")

// sniffLen is how many leading bytes are read to recognize a container.
const sniffLen = 12

// Backends lists the accepted backend names.
func Backends() []Backend {
	return []Backend{BackendAuto, BackendVidio, BackendGStreamer, BackendAV1, BackendY4M}
}

// ParseBackend parses a backend name. The empty string means BackendAuto.
func ParseBackend(s string) (Backend, error) {
	if s == "" {
		return BackendAuto, nil
	}
	b := Backend(strings.ToLower(s))
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
}

// Options configures backend selection.
type Options struct {
	Backend Backend
}

type openFunc func(path string, logger ports.Logger) (ports.FrameSource, error)

// Opener implements ports.SourceOpener over all backends.
type Opener struct {
	opts    Options
	logger  ports.Logger
	openers map[Backend]openFunc
}

// New creates an Opener.
func New(opts Options, logger ports.Logger) *Opener {
	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}
	return &Opener{
		opts:   opts,
		logger: logger.WithComponent("smartsource"),
		openers: map[Backend]openFunc{
			BackendVidio: func(path string, _ ports.Logger) (ports.FrameSource, error) {
				return vidiosource.Open(path)
			},
			BackendGStreamer: func(path string, l ports.Logger) (ports.FrameSource, error) {
				return gstsource.Open(path, l)
			},
			BackendAV1: func(path string, l ports.Logger) (ports.FrameSource, error) {
				return av1source.Open(path, l)
			},
			BackendY4M: func(path string, _ ports.Logger) (ports.FrameSource, error) {
				return y4msource.Open(path)
			},
		},
	}
}

// Open opens path with the configured backend, resolving BackendAuto first.
func (o *Opener) Open(ctx context.Context, path string) (ports.FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backend := o.opts.Backend
	if backend == BackendAuto {
		detected, err := o.Resolve(path)
		if err != nil {
			return nil, err
		}
		backend = detected
	}

	open, ok := o.openers[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}

	o.logger.Debug("Using %s backend", string(backend))
	src, err := open(path, o.logger)
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", backend, err)
	}
	return src, nil
}

// Resolve picks a backend for path from its leading bytes:
// Y4M streams go to BackendY4M, fragmented AV1 MP4 to BackendAV1, and
// everything else to BackendVidio.
func (o *Opener) Resolve(path string) (Backend, error) {
	head, err := readHead(path)
	if err != nil {
		return "", err
	}

	if bytes.HasPrefix(head, []byte(y4msource.Signature)) {
		o.logger.Debug("Detected Y4M stream")
		return BackendY4M, nil
	}

	if len(head) >= 8 && string(head[4:8]) == "ftyp" {
		info, err := codecdetect.ProbeFile(path)
		if err != nil {
			// Leave unusual MP4 layouts to ffmpeg.
			return BackendVidio, nil
		}
		o.logger.Debug("Detected MP4 with %s video track", string(info.Codec))
		if info.Codec == codecdetect.CodecAV1 && info.Fragmented {
			return BackendAV1, nil
		}
	}

	return BackendVidio, nil
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// Ensure Opener implements ports.SourceOpener
var _ ports.SourceOpener = (*Opener)(nil)
