package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, for pull requests and
// documentation.
type MarkdownWriter struct {
	baseWriter
	title cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary)
	w.writeRejections(md, summary)
	w.writeAccepted(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("SVG Sanitization Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Policy", "`" + s.Policy + "`"},
			{"Policy Version", s.PolicyVersion},
			{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Files", strconv.Itoa(s.Total)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"✅ " + w.title.String(string(model.StatusClean)), strconv.Itoa(s.Clean)},
			{"🧹 " + w.title.String(string(model.StatusSanitized)), strconv.Itoa(s.Sanitized)},
			{"⛔ " + w.title.String(string(model.StatusRejected)), strconv.Itoa(s.Rejected)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.HasRejections() {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of rejection reasons.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Rejection Reasons"),
		piechart.WithShowData(true),
	)
	for _, reason := range s.Reasons() {
		chart.LabelAndIntValue(string(reason), uint64(s.ByReason[reason]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.CriticalCount > 0:
		md.Cautionf("%d file(s) tried to run script. Treat their uploaders as hostile.", s.CriticalCount)
	case s.HighCount > 0:
		md.Warningf("%d file(s) looked built to exhaust the parser.", s.HighCount)
	case s.HasRejections():
		md.Importantf("%d file(s) were rejected.", s.Rejected)
	case s.Sanitized > 0:
		md.Note("Every file was accepted. Some needed cleaning.")
	default:
		md.Tip("Every file was already clean.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeRejections(md *markdown.Markdown, s *model.Summary) {
	md.H2("Rejected Files")
	md.PlainText("")

	rejected := s.GetOutcomesByStatus(model.StatusRejected)
	if len(rejected) == 0 {
		md.PlainText("No files rejected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(rejected))
	for i, o := range rejected {
		title, detail := rejectionDetail(o)
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{
			"`" + truncateString(o.Source, 50) + "`",
			o.SeverityText,
			title,
			truncateString(detail, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Severity", "Reason", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, reason := range s.Reasons() {
		info := model.GetReasonInfo(reason)
		if info.Recommendation != "" {
			md.Details(info.Title, info.Impact+" "+info.Recommendation)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeAccepted(md *markdown.Markdown, s *model.Summary) {
	if s.Accepted() == 0 {
		return
	}
	md.H2("Accepted Files")
	md.PlainText("")

	rows := make([][]string, 0, s.Accepted())
	for _, o := range s.Outcomes {
		if !o.Status.Accepted() {
			continue
		}
		dest := o.Destination
		if dest == "" {
			dest = "-"
		}
		rows = append(rows, []string{
			"`" + truncateString(o.Source, 50) + "`",
			w.title.String(string(o.Status)),
			strconv.Itoa(o.Stats.ElementsRemoved),
			strconv.Itoa(o.Stats.AttributesRemoved),
			strconv.FormatInt(o.OutputBytes, 10),
			truncateString(dest, 40),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Status", "Elements Removed", "Attributes Removed", "Bytes", "Destination"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [easysvg](https://github.com/WordPress-Satkhira-Community/easy-svg-upload)*")
}
