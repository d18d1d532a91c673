package summarizer

import "time"

// Summary contains all data collected during an extraction run.
type Summary struct {
	// Metadata
	RunID       string
	GeneratedAt time.Time

	// Input video
	Source SourceInfo

	// Output files
	Output OutputInfo

	// Run timing
	Timing TimingInfo
}

// SourceInfo describes the decoded video.
type SourceInfo struct {
	Path           string
	Backend        string
	Codec          string
	Width          int
	Height         int
	ExpectedFrames int // 0 if the backend could not tell
}

// OutputInfo describes the written frames.
type OutputInfo struct {
	Directory     string
	Format        string
	Pattern       string // e.g. "frame_%04d.png"
	FramesWritten int
	FramesSkipped int
	FirstFile     string
	LastFile      string
}

// TimingInfo contains wall-clock measurements.
type TimingInfo struct {
	DurationMs int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRunID sets the identifier of the run.
func (b *Builder) WithRunID(id string) *Builder {
	b.summary.RunID = id
	return b
}

// WithSource sets input video information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithDuration sets the run duration.
func (b *Builder) WithDuration(d time.Duration) *Builder {
	b.summary.Timing = TimingInfo{
		DurationMs: int(d.Milliseconds()),
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
