package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", l10n.T("Thumbnail Summary"))
	fmt.Fprintf(&sb, "%s: %s\n", l10n.T("Generated"), s.GeneratedAt.Format(time.RFC3339))
	if s.RunID != "" {
		fmt.Fprintf(&sb, "%s: `%s`\n", l10n.T("Run"), s.RunID)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Input"))
	tableHeader(&sb)
	fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Path"), s.Input.Path)
	fmt.Fprintf(&sb, "| %s | #%d (%s) |\n", l10n.T("Stream"), s.Stream.Index, s.Stream.Codec)
	fmt.Fprintf(&sb, "| %s | %dx%d |\n", l10n.T("Resolution"), s.Stream.Width, s.Stream.Height)
	if s.Stream.Decoder != "" {
		fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Decoder"), s.Stream.Decoder)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Seek"))
	tableHeader(&sb)
	fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Target"), formatMicros(s.Seek.TargetMicros))
	if s.Seek.FellBack {
		fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Fallback"), l10n.T("Yes (restarted from 0)"))
	}
	fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Frame PTS"), formatMicros(s.Seek.FramePTSMicros))
	fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Packets"), l10n.F("%d read, %d dropped", s.Seek.PacketsRead, s.Seek.PacketsDropped))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Output"))
	tableHeader(&sb)
	if s.Output.Path != "" {
		fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Path"), s.Output.Path)
		fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Format"), s.Output.Format)
		fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("File Size"), formatBytes(s.Output.FileSize))
	}
	fmt.Fprintf(&sb, "| %s | %dx%d |\n", l10n.T("Size"), s.Output.Width, s.Output.Height)
	fmt.Fprintf(&sb, "| %s | %s |\n", l10n.T("Source Pixels"), s.Output.SourceFormat)

	return sb.String()
}

func tableHeader(sb *strings.Builder) {
	fmt.Fprintf(sb, "| %s | %s |\n|------|-------|\n", l10n.T("Item"), l10n.T("Value"))
}

func formatMicros(us int64) string {
	return fmt.Sprintf("%.3f s", float64(us)/1e6)
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
