package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to list are shown.
	showEmpty bool

	// verbose lists accepted files and recommendations too.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeRejections(&sb, summary)
	if w.verbose {
		w.writeAccepted(&sb, summary)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      SVG SANITIZATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Policy:    %s (version %s)\n", s.Policy, s.PolicyVersion)
	fmt.Fprintf(sb, "Generated: %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Files:     %d\n\n", s.Total)
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, s *model.Summary) {
	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  CLEAN:     %d\n", s.Clean)
	fmt.Fprintf(sb, "  SANITIZED: %d\n", s.Sanitized)
	fmt.Fprintf(sb, "  REJECTED:  %d\n", s.Rejected)
	sb.WriteString("\n")

	if s.Accepted() > 0 {
		fmt.Fprintf(sb, "  Removed %d element(s), %d attribute(s), %d other node(s)\n",
			s.Removed.ElementsRemoved, s.Removed.AttributesRemoved, s.Removed.NodesStripped)
		fmt.Fprintf(sb, "  Accepted bytes: %d in, %d out\n\n", s.InputBytes, s.OutputBytes)
	}
}

func (w *SimpleWriter) writeRejections(sb *strings.Builder, s *model.Summary) {
	if !s.HasRejections() && !w.showEmpty {
		return
	}
	section(sb, "REJECTED FILES")

	if !s.HasRejections() {
		sb.WriteString("  No files rejected\n\n")
		return
	}
	for _, reason := range s.Reasons() {
		info := model.GetReasonInfo(reason)
		fmt.Fprintf(sb, "[%s] %s (%d)\n", severityIndicator(info.Severity), info.Title, s.ByReason[reason])
		for _, o := range s.GetOutcomesByStatus(model.StatusRejected) {
			if o.Reason != reason {
				continue
			}
			fmt.Fprintf(sb, "  * %s\n", o.Source)
			if o.Detail != "" {
				fmt.Fprintf(sb, "    Detail: %s\n", o.Detail)
			}
		}
		if w.verbose && info.Recommendation != "" {
			fmt.Fprintf(sb, "    Recommendation: %s\n", info.Recommendation)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeAccepted(sb *strings.Builder, s *model.Summary) {
	accepted := append(s.GetOutcomesByStatus(model.StatusSanitized), s.GetOutcomesByStatus(model.StatusClean)...)
	if len(accepted) == 0 && !w.showEmpty {
		return
	}
	section(sb, "ACCEPTED FILES")

	if len(accepted) == 0 {
		sb.WriteString("  No files accepted\n\n")
		return
	}
	for _, o := range accepted {
		fmt.Fprintf(sb, "  [%s] %s", o.Status, o.Source)
		if o.Destination != "" {
			fmt.Fprintf(sb, " -> %s", o.Destination)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}
