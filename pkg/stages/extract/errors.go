package extract

import "errors"

var (
	// ErrDirectoryCreate is returned when the output directory cannot be created.
	// Nothing has been decoded at that point.
	ErrDirectoryCreate = errors.New("extract: cannot create output directory")

	// ErrSourceOpen is returned when the video cannot be opened or is not a
	// decodable video. No frames have been written.
	ErrSourceOpen = errors.New("extract: cannot open video source")

	// ErrOutputWrite is returned when a frame cannot be encoded or written.
	// Frames written before it stay on disk.
	ErrOutputWrite = errors.New("extract: cannot write frame")

	// ErrOutputExists is wrapped in ErrOutputWrite when overwriting is disabled
	// and the target file already exists.
	ErrOutputExists = errors.New("extract: output file already exists")
)
