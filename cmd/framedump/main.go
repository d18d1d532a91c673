// Package main provides the CLI entry point for framedump.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/framedump/pkg/adapters/codecdetect"
	"github.com/user/framedump/pkg/adapters/imagecodec"
	"github.com/user/framedump/pkg/adapters/logger"
	"github.com/user/framedump/pkg/adapters/osfilesystem"
	"github.com/user/framedump/pkg/adapters/progress"
	"github.com/user/framedump/pkg/adapters/smartsource"
	"github.com/user/framedump/pkg/config"
	"github.com/user/framedump/pkg/orchestrator"
	"github.com/user/framedump/pkg/ports"
	"github.com/user/framedump/pkg/stages/extract"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Extract ExtractCmd `cmd:"" help:"Extract every frame of a video as numbered images."`
	Probe   ProbeCmd   `cmd:"" help:"Show what the decoding backend reports about a video."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// ExtractCmd defines the extract subcommand.
// Pointer flags override the config file only when given.
type ExtractCmd struct {
	// Input
	Input  string `arg:"" optional:"" help:"Video file to extract frames from."`
	Config string `short:"c" help:"YAML config file; flags override its values."`

	// Output
	Output *string `short:"o" help:"Output directory (default: frames)."`
	Prefix *string `help:"Filename prefix (default: frame_)."`
	Digits *int    `help:"Minimum zero-padded index width (default: 4)."`

	// Encoding
	Format      *string `short:"f" help:"Image format: png, jpeg, bmp or tiff (default: png)."`
	JPEGQuality *int    `name:"jpeg-quality" help:"JPEG quality 1-100 (default: 90)."`

	// Decoding
	Backend *string `short:"b" help:"Decoding backend: auto, vidio, gstreamer, av1 or y4m (default: auto)."`

	// Write behavior
	NoOverwrite  bool    `help:"Fail instead of replacing existing frame files."`
	OnWriteError *string `name:"on-write-error" help:"What to do when a frame cannot be written: abort or skip (default: abort)."`

	// Reporting
	Summary    *string `help:"Write a Markdown summary of the run to this path."`
	LogLevel   *string `short:"l" help:"Log level: debug, info, warn or error (default: info)."`
	Quiet      bool    `short:"Q" help:"Suppress all log output."`
	Progress   bool    `help:"Draw a progress bar on the terminal while extracting."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	Input    string `arg:"" help:"Video file to inspect."`
	Backend  string `short:"b" default:"auto" help:"Decoding backend: auto, vidio, gstreamer, av1 or y4m."`
	LogLevel string `short:"l" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("framedump"),
		kong.Description(l10n.T("Dump every frame of a video file as numbered images")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the extract command.
func (cmd *ExtractCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel, cmd.Quiet)

	input, err := cfg.ToExtractInput()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create adapters
	fs := osfilesystem.New()
	opener := smartsource.New(cfg.SourceOptions(), log)
	encoder := imagecodec.New()

	// Create stage and orchestrator
	extractStage := extract.NewStage(opener, encoder, fs, log)
	if cmd.showProgress(cfg.LogLevel) {
		extractStage.WithProgress(progress.NewBar(os.Stderr))
	}
	orch := orchestrator.New(extractStage, fs, log)

	_, err = orch.Run(ctx, orchestrator.Config{
		Extract:     input,
		SummaryPath: cfg.Summary,
	})
	return err
}

// buildConfig starts from defaults or the config file and applies flags.
func (cmd *ExtractCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Input != "" {
		cfg.Input = cmd.Input
	}
	if cmd.Output != nil {
		cfg.OutputDir = *cmd.Output
	}
	if cmd.Prefix != nil {
		cfg.Prefix = *cmd.Prefix
	}
	if cmd.Digits != nil {
		cfg.Digits = *cmd.Digits
	}
	if cmd.Format != nil {
		cfg.Format = *cmd.Format
	}
	if cmd.JPEGQuality != nil {
		cfg.JPEGQuality = *cmd.JPEGQuality
	}
	if cmd.Backend != nil {
		cfg.Backend = *cmd.Backend
	}
	if cmd.NoOverwrite {
		cfg.Overwrite = false
	}
	if cmd.OnWriteError != nil {
		cfg.OnWriteError = *cmd.OnWriteError
	}
	if cmd.Summary != nil {
		cfg.Summary = *cmd.Summary
	}
	if cmd.LogLevel != nil {
		cfg.LogLevel = *cmd.LogLevel
	}

	return cfg, cfg.Validate()
}

// showProgress reports whether the requested progress bar fits the current
// output. Debug logs would interleave with the bar, so it is hidden at that level.
func (cmd *ExtractCmd) showProgress(level string) bool {
	if !cmd.Progress || cmd.Quiet || ports.ParseLogLevel(level) == ports.LevelDebug {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	backend, err := smartsource.ParseBackend(cmd.Backend)
	if err != nil {
		return err
	}
	log := newLogger(cmd.LogLevel, false)

	src, err := smartsource.New(smartsource.Options{Backend: backend}, log).Open(context.Background(), cmd.Input)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", extract.ErrSourceOpen, cmd.Input, err)
	}
	defer src.Close()

	info := src.Info()
	fmt.Println(l10n.F("Backend: %s", info.Backend))
	fmt.Println(l10n.F("Codec: %s", info.Codec))
	fmt.Println(l10n.F("Resolution: %dx%d", info.Width, info.Height))
	if info.Frames > 0 {
		fmt.Println(l10n.F("Frames: %d", info.Frames))
	} else {
		fmt.Println(l10n.T("Frames: unknown"))
	}

	if mp4, err := codecdetect.ProbeFile(cmd.Input); err == nil {
		fmt.Println(l10n.F("MP4 track %d: %s, %d samples, fragmented: %t", mp4.TrackID, mp4.Codec, mp4.Samples, mp4.Fragmented))
	}
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("framedump version %s", version))
	return nil
}

func newLogger(level string, quiet bool) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(level))
}
