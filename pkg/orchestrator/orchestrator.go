// Package orchestrator runs an extraction and reports its outcome.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/framedump/pkg/pipeline"
	"github.com/user/framedump/pkg/ports"
	"github.com/user/framedump/pkg/stages/extract"
	"github.com/user/framedump/pkg/summarizer"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	Extract pipeline.ExtractInput

	// SummaryPath is where a Markdown summary is written; empty disables it.
	SummaryPath string
}

// Orchestrator coordinates the extract stage and the run summary.
type Orchestrator struct {
	extractStage pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult]
	summary      *summarizer.Writer
	logger       ports.Logger
	now          func() time.Time
	newID        func() string
}

// New creates a new Orchestrator.
func New(
	extractStage pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult],
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		extractStage: extractStage,
		summary:      summarizer.NewWriter(summarizer.NewMarkdownFormatter(), fs),
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Run extracts all frames and logs the completion report.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	in := config.Extract
	o.logger.Debug("Extracting frames from %s into %s", in.InputPath, in.OutputDir)

	runID := o.newID()
	o.logger.Debug("Run ID: %s", runID)

	started := o.now()
	extracted, err := o.extractStage.Execute(ctx, in)
	result := RunResult{
		ExtractResult: extracted,
		RunID:         runID,
		Duration:      o.now().Sub(started),
	}
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			o.logger.Warn("Interrupted, shutting down...")
		case errors.Is(err, extract.ErrSourceOpen):
			o.logger.Error("Failed to open source: %s", err)
		default:
			o.logger.Error("Extraction failed: %s", err)
		}
		return result, fmt.Errorf("extract stage: %w", err)
	}

	if extracted.FramesSkipped > 0 {
		o.logger.Warn("Skipped %d frames due to write errors", extracted.FramesSkipped)
	}
	o.logger.Info("Done! Extracted %d frames.", extracted.FramesWritten)

	if config.SummaryPath != "" {
		if err := o.summary.Write(config.SummaryPath, o.buildSummary(in, result)); err != nil {
			// A summary failure does not fail the run.
			o.logger.Warn("Failed to write summary: %s", err)
		} else {
			o.logger.Info("Summary saved to %s", config.SummaryPath)
		}
	}

	return result, nil
}

func (o *Orchestrator) buildSummary(in pipeline.ExtractInput, result RunResult) *summarizer.Summary {
	src := result.Source
	output := summarizer.OutputInfo{
		Directory:     in.OutputDir,
		Format:        in.Format.String(),
		Pattern:       fmt.Sprintf("%s%%0%dd.%s", in.Prefix, result.Digits, in.Format.Extension()),
		FramesWritten: result.FramesWritten,
		FramesSkipped: result.FramesSkipped,
	}
	if n := len(result.Paths); n > 0 {
		output.FirstFile = result.Paths[0]
		output.LastFile = result.Paths[n-1]
	}

	summary := summarizer.NewBuilder().
		WithRunID(result.RunID).
		WithSource(summarizer.SourceInfo{
			Path:           in.InputPath,
			Backend:        src.Backend,
			Codec:          src.Codec,
			Width:          src.Width,
			Height:         src.Height,
			ExpectedFrames: src.Frames,
		}).
		WithOutput(output).
		WithDuration(result.Duration).
		Build()
	summary.GeneratedAt = o.now()
	return summary
}

// RunResult contains the results of a run for reporting.
type RunResult struct {
	pipeline.ExtractResult

	RunID    string // Random UUID identifying this run in logs and the summary
	Duration time.Duration
}
