// Package gstsource decodes video files with a GStreamer decodebin pipeline.
package gstsource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"

	"github.com/user/framedump/pkg/ports"
)

// BackendName identifies this backend in ports.SourceInfo.
const BackendName = "gstreamer"

// rgbaCaps forces the appsink to receive packed 8-bit RGBA.
const rgbaCaps = "video/x-raw,format=RGBA"

var (
	// ErrPipeline is reported when GStreamer posts an error on the bus.
	ErrPipeline = errors.New("gstsource: pipeline error")

	// ErrNoVideo is returned when the file has no decodable video stream.
	ErrNoVideo = errors.New("gstsource: no video stream")
)

var initOnce sync.Once

// Source pulls decoded RGBA frames from an appsink.
type Source struct {
	pipeline *gst.Pipeline
	sink     *app.Sink
	mainloop *glib.MainLoop
	logger   ports.Logger

	info    ports.SourceInfo
	pending *ports.VideoFrame
	pos     int
	done    bool

	mu  sync.Mutex
	err error
}

// Open builds and starts the pipeline for path, then prerolls the first
// frame to learn the picture size.
func Open(path string, logger ports.Logger) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	initOnce.Do(func() {
		gst.Init(nil)
	})

	s := &Source{
		logger: logger.WithComponent("gstsource"),
		info:   ports.SourceInfo{Backend: BackendName},
	}
	if err := s.build(path); err != nil {
		return nil, err
	}

	s.mainloop = glib.NewMainLoop(glib.MainContextDefault(), false)
	pipeline := s.pipeline
	pipeline.GetPipelineBus().AddWatch(func(msg *gst.Message) bool {
		return s.onMessage(pipeline, msg)
	})
	go s.mainloop.Run()

	if err := s.pipeline.SetState(gst.StatePlaying); err != nil {
		s.Close()
		if perr := s.pipelineErr(); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("%w: %v", ErrPipeline, err)
	}

	first, err := s.pull()
	if err != nil {
		s.Close()
		return nil, err
	}
	if first == nil {
		if perr := s.pipelineErr(); perr != nil {
			s.Close()
			return nil, perr
		}
		s.done = true
		return s, nil
	}
	s.pending = first
	return s, nil
}

func (s *Source) build(path string) error {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return err
	}

	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return err
	}
	if err := filesrc.SetProperty("location", path); err != nil {
		return err
	}

	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return err
	}
	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return err
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return err
	}
	if err := capsfilter.SetProperty("caps", gst.NewCapsFromString(rgbaCaps)); err != nil {
		return err
	}

	sink, err := app.NewAppSink()
	if err != nil {
		return err
	}
	// Decode as fast as possible instead of in real time.
	if err := sink.SetProperty("sync", false); err != nil {
		return err
	}

	if err := pipeline.AddMany(filesrc, decodebin, convert, capsfilter, sink.Element); err != nil {
		return err
	}
	if err := filesrc.Link(decodebin); err != nil {
		return err
	}
	if err := gst.ElementLinkMany(convert, capsfilter, sink.Element); err != nil {
		return err
	}

	convertSink := convert.GetStaticPad("sink")
	decodebin.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		if !isVideoPad(srcPad) || convertSink.IsLinked() {
			return
		}
		if ret := srcPad.Link(convertSink); ret != gst.PadLinkOK {
			s.setErr(fmt.Errorf("%w: link decodebin: %v", ErrPipeline, ret))
		}
	})

	s.pipeline = pipeline
	s.sink = sink
	return nil
}

func (s *Source) onMessage(pipeline *gst.Pipeline, msg *gst.Message) bool {
	switch msg.Type() {
	case gst.MessageError:
		gerr := msg.ParseError()
		s.logger.Warn("GStreamer pipeline error: %s", gerr.Error())
		if debug := gerr.DebugString(); debug != "" {
			s.logger.Debug("%s", debug)
		}
		s.setErr(fmt.Errorf("%w: %s", ErrPipeline, gerr.Error()))
		// Stopping the pipeline unblocks a pending PullSample.
		pipeline.SetState(gst.StateNull)
		return false
	case gst.MessageEOS:
		return false
	}
	return true
}

// Next returns the next decoded frame. A pipeline error ends the stream;
// the cause is available from StreamErr.
func (s *Source) Next(ctx context.Context) (ports.VideoFrame, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if s.pending != nil {
		frame := *s.pending
		s.pending = nil
		return frame, nil
	}
	if s.done {
		return ports.VideoFrame{}, io.EOF
	}

	frame, err := s.pull()
	if err != nil {
		s.done = true
		s.setErr(err)
		return ports.VideoFrame{}, io.EOF
	}
	if frame == nil {
		s.done = true
		return ports.VideoFrame{}, io.EOF
	}
	return *frame, nil
}

// pull blocks until the appsink yields a sample. It returns nil at end of
// stream or after the pipeline has been stopped.
func (s *Source) pull() (*ports.VideoFrame, error) {
	sample := s.sink.PullSample()
	if sample == nil {
		return nil, nil
	}

	width, height, err := sampleSize(sample)
	if err != nil {
		return nil, err
	}
	if s.info.Width == 0 {
		s.info.Width = width
		s.info.Height = height
		s.info.Codec = "raw/rgba"
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return nil, fmt.Errorf("%w: sample without buffer", ErrPipeline)
	}
	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if len(data) < len(img.Pix) {
		buffer.Unmap()
		return nil, fmt.Errorf("%w: short buffer %d < %d", ErrPipeline, len(data), len(img.Pix))
	}
	copy(img.Pix, data)
	buffer.Unmap()

	frame := &ports.VideoFrame{
		Image:       img,
		Position:    s.pos,
		TimestampMs: -1,
	}
	if pts := buffer.PresentationTimestamp(); pts != gst.ClockTimeNone {
		frame.TimestampMs = int(time.Duration(pts).Milliseconds())
	}
	s.pos++
	return frame, nil
}

// Info returns what the pipeline reported for the first frame.
// The frame count is not known in advance.
func (s *Source) Info() ports.SourceInfo {
	return s.info
}

// StreamErr returns the pipeline error that ended the stream, if any.
func (s *Source) StreamErr() error {
	return s.pipelineErr()
}

// Close stops the pipeline and its bus watch.
func (s *Source) Close() error {
	s.done = true
	s.pending = nil
	var err error
	if s.pipeline != nil {
		err = s.pipeline.BlockSetState(gst.StateNull)
		s.pipeline = nil
	}
	if s.mainloop != nil {
		s.mainloop.Quit()
		s.mainloop = nil
	}
	return err
}

func (s *Source) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Source) pipelineErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func isVideoPad(pad *gst.Pad) bool {
	caps := pad.GetCurrentCaps()
	if caps == nil {
		return false
	}
	for i := 0; i < caps.GetSize(); i++ {
		if strings.HasPrefix(caps.GetStructureAt(i).Name(), "video/") {
			return true
		}
	}
	return false
}

func sampleSize(sample *gst.Sample) (int, int, error) {
	caps := sample.GetCaps()
	if caps == nil || caps.GetSize() == 0 {
		return 0, 0, fmt.Errorf("%w: sample without caps", ErrNoVideo)
	}
	st := caps.GetStructureAt(0)
	width, err := intField(st, "width")
	if err != nil {
		return 0, 0, err
	}
	height, err := intField(st, "height")
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func intField(st *gst.Structure, name string) (int, error) {
	v, err := st.GetValue(name)
	if err != nil {
		return 0, fmt.Errorf("%w: caps field %s: %v", ErrPipeline, name, err)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: caps field %s has type %T", ErrPipeline, name, v)
	}
}

// Ensure Source implements ports.FrameSource
var _ ports.FrameSource = (*Source)(nil)
