package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Extraction Summary\n\n")
	if s.RunID != "" {
		fmt.Fprintf(&sb, "Run: `%s`\n", s.RunID)
	}
	fmt.Fprintf(&sb, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Source\n\n")
	sb.WriteString("| Item | Value |\n")
	sb.WriteString("|------|-------|\n")
	fmt.Fprintf(&sb, "| File | %s |\n", escapeCell(s.Source.Path))
	fmt.Fprintf(&sb, "| Backend | %s |\n", orNA(s.Source.Backend))
	fmt.Fprintf(&sb, "| Codec | %s |\n", orNA(s.Source.Codec))
	fmt.Fprintf(&sb, "| Resolution | %s |\n", formatResolution(s.Source.Width, s.Source.Height))
	fmt.Fprintf(&sb, "| Expected Frames | %s |\n", formatCount(s.Source.ExpectedFrames))
	sb.WriteString("\n")

	sb.WriteString("## Output\n\n")
	sb.WriteString("| Item | Value |\n")
	sb.WriteString("|------|-------|\n")
	fmt.Fprintf(&sb, "| Directory | %s |\n", escapeCell(s.Output.Directory))
	fmt.Fprintf(&sb, "| Format | %s |\n", orNA(s.Output.Format))
	fmt.Fprintf(&sb, "| Pattern | `%s` |\n", s.Output.Pattern)
	fmt.Fprintf(&sb, "| Frames Written | %d |\n", s.Output.FramesWritten)
	if s.Output.FramesSkipped > 0 {
		fmt.Fprintf(&sb, "| Frames Skipped | %d |\n", s.Output.FramesSkipped)
	}
	if s.Output.FramesWritten > 0 {
		fmt.Fprintf(&sb, "| First File | %s |\n", escapeCell(s.Output.FirstFile))
		fmt.Fprintf(&sb, "| Last File | %s |\n", escapeCell(s.Output.LastFile))
	}
	sb.WriteString("\n")

	sb.WriteString("## Timing\n\n")
	fmt.Fprintf(&sb, "- Duration: %s\n", formatDuration(s.Timing.DurationMs))
	if fps := framesPerSecond(s.Output.FramesWritten, s.Timing.DurationMs); fps > 0 {
		fmt.Fprintf(&sb, "- Throughput: %.1f frames/s\n", fps)
	}

	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return escapeCell(s)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func formatResolution(w, h int) string {
	if w <= 0 || h <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func formatCount(n int) string {
	if n <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", n)
}

func formatDuration(ms int) string {
	if ms < 1000 {
		return fmt.Sprintf("%d ms", ms)
	}
	return fmt.Sprintf("%.2f s", float64(ms)/1000)
}

func framesPerSecond(frames, ms int) float64 {
	if frames <= 0 || ms <= 0 {
		return 0
	}
	return float64(frames) * 1000 / float64(ms)
}
