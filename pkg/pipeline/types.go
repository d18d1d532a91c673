package pipeline

import (
	"fmt"

	"github.com/user/framedump/pkg/ports"
)

// =============================================================================
// Extract Stage Types
// =============================================================================

// WriteErrorPolicy decides what happens when a frame cannot be written.
type WriteErrorPolicy string

const (
	// WriteErrorAbort stops the run at the first failed frame.
	WriteErrorAbort WriteErrorPolicy = "abort"
	// WriteErrorSkip logs the failure and continues with the next frame.
	WriteErrorSkip WriteErrorPolicy = "skip"
)

// ParseWriteErrorPolicy parses a policy name. The empty string means WriteErrorAbort.
func ParseWriteErrorPolicy(s string) (WriteErrorPolicy, error) {
	switch WriteErrorPolicy(s) {
	case "", WriteErrorAbort:
		return WriteErrorAbort, nil
	case WriteErrorSkip:
		return WriteErrorSkip, nil
	default:
		return "", fmt.Errorf("unknown write error policy: %q", s)
	}
}

// ExtractInput contains parameters for frame extraction.
type ExtractInput struct {
	InputPath    string
	OutputDir    string
	Prefix       string            // Filename prefix (default: "frame_")
	Digits       int               // Minimum zero-padded index width (default: 4)
	Format       ports.ImageFormat // Output image format (default: PNG)
	JPEGQuality  int               // 1-100, JPEG only (default: 90)
	Overwrite    bool              // Replace existing files (default: true)
	OnWriteError WriteErrorPolicy  // Default: abort
}

// DefaultExtractInput returns ExtractInput with default values.
func DefaultExtractInput() ExtractInput {
	return ExtractInput{
		OutputDir:    "frames",
		Prefix:       "frame_",
		Digits:       4,
		Format:       ports.FormatPNG,
		JPEGQuality:  90,
		Overwrite:    true,
		OnWriteError: WriteErrorAbort,
	}
}

// ExtractResult contains the outcome of a completed extraction.
type ExtractResult struct {
	FramesWritten int      // Frames successfully written; the reported count
	FramesSkipped int      // Frames dropped under WriteErrorSkip
	Paths         []string // Written files in decode order
	Digits        int      // Index width actually used for filenames
	Source        ports.SourceInfo
}
