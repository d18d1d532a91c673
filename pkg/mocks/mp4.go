package mocks

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"
)

// FragmentedMP4 builds a minimal fragmented MP4 with a single video track.
// Samples are stored verbatim; the first one is marked as a sync sample.
// sampleEntry is the four-character sample entry type, e.g. "av01".
func FragmentedMP4(sampleEntry string, width, height int, samples [][]byte) ([]byte, error) {
	const timescale = 30000
	const sampleDur = 1000

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak

	var config mp4.Box
	if sampleEntry == "av01" {
		config = &mp4.Av1CBox{CodecConfRec: av1.CodecConfRec{
			Version:            1,
			SeqLevelIdx0:       8,
			ChromaSubsamplingX: 1,
			ChromaSubsamplingY: 1,
		}}
	}
	vse := mp4.CreateVisualSampleEntryBox(sampleEntry, uint16(width), uint16(height), config)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(vse)
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}

	if len(samples) == 0 {
		return buf.Bytes(), nil
	}

	frag, err := mp4.CreateFragment(1, trak.Tkhd.TrackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}
	for i, data := range samples {
		flags := mp4.NonSyncSampleFlags
		if i == 0 {
			flags = mp4.SyncSampleFlags
		}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   sampleDur,
			},
			DecodeTime: uint64(i * sampleDur),
			Data:       data,
		})
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}
