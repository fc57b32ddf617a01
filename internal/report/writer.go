package report

import (
	"io"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.Summary) (int, error)
}

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// NewWriter returns the writer for format. Unknown formats fall back to
// text.
func NewWriter(format Format, output io.Writer, verbose bool) Writer {
	switch format {
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	default:
		return NewSimpleWriter(output, WithVerbose(verbose))
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// rejectionDetail returns the reason title and detail of a rejected outcome.
func rejectionDetail(o *model.Outcome) (string, string) {
	info := model.GetReasonInfo(o.Reason)
	return info.Title, o.Detail
}
