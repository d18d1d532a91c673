// Package codecdetect inspects MP4 containers to find the video codec and
// stream geometry before decoding.
package codecdetect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("codecdetect: no video track found")

// Info describes the first video track of an MP4 file.
type Info struct {
	Codec      Codec
	Width      int
	Height     int
	Samples    int // Number of samples; 0 if the container does not say
	Fragmented bool
	TrackID    uint32
	Timescale  uint32
}

// ProbeFile reads the MP4 structure of the file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// ProbeBytes reads the MP4 structure from an in-memory file.
func ProbeBytes(data []byte) (Info, error) {
	return Probe(bytes.NewReader(data))
}

// Probe reads the MP4 structure from reader and rewinds it afterwards.
func Probe(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	return FromFile(mp4File)
}

// FromFile extracts Info from an already decoded MP4 file.
func FromFile(mp4File *mp4.File) (Info, error) {
	var moov *mp4.MoovBox
	fragmented := mp4File.IsFragmented()
	if fragmented && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	} else {
		moov = mp4File.Moov
	}
	if moov == nil {
		return Info{}, ErrNoVideoTrack
	}

	for _, trak := range moov.Traks {
		if !isVideoTrack(trak) {
			continue
		}
		info := Info{
			Codec:      codecFromTrack(trak),
			Fragmented: fragmented,
			TrackID:    trak.Tkhd.TrackID,
			Timescale:  trak.Mdia.Mdhd.Timescale,
		}
		info.Width, info.Height = trackDimensions(trak)
		if fragmented {
			info.Samples = countFragmentSamples(mp4File, info.TrackID)
		} else if stsz := trak.Mdia.Minf.Stbl.Stsz; stsz != nil {
			info.Samples = int(stsz.SampleNumber)
		}
		return info, nil
	}

	return Info{}, ErrNoVideoTrack
}

func isVideoTrack(trak *mp4.TrakBox) bool {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Mdhd == nil {
		return false
	}
	if trak.Mdia.Hdlr.HandlerType != "vide" {
		return false
	}
	return trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil
}

func codecFromTrack(trak *mp4.TrakBox) Codec {
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return CodecH264
		case "hvc1", "hev1":
			return CodecHEVC
		case "av01":
			return CodecAV1
		case "vp09":
			return CodecVP9
		}
	}
	return CodecUnknown
}

func trackDimensions(trak *mp4.TrakBox) (int, int) {
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			return int(vse.Width), int(vse.Height)
		}
	}
	if trak.Tkhd != nil {
		return int(trak.Tkhd.Width >> 16), int(trak.Tkhd.Height >> 16)
	}
	return 0, 0
}

func countFragmentSamples(mp4File *mp4.File, trackID uint32) int {
	n := 0
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				for _, trun := range traf.Truns {
					n += int(trun.SampleCount())
				}
			}
		}
	}
	return n
}
