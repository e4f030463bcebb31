package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/moltwatch/censyscollect/internal/model"
)

// maxRowsInTable caps the matched-endpoints table so summaries stay
// readable; the full data is always in the CSV artifact.
const maxRowsInTable = 20

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(run *model.CollectionRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeCounters(md, run)
	w.writeArtifacts(md, run)
	w.writeMatches(md, run)

	return len(md.String()), md.Build()
}

// writeHeader writes the run header with query information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.CollectionRun) {
	md.H1("Collection Run Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + run.Query + "`"},
			{"Label", run.Label},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.getStatusText(run)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run *model.CollectionRun) string {
	if run.Aborted() {
		return "⚠️ Stopped early - " + run.ErrorNote
	}
	return "✅ Complete"
}

// writeCounters writes the run counter section.
func (w *MarkdownWriter) writeCounters(md *markdown.Markdown, run *model.CollectionRun) {
	md.H2("Counters")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages fetched", strconv.Itoa(run.Pages)},
			{"Hosts fetched", strconv.Itoa(run.Hosts)},
			{"Rows matched", strconv.Itoa(run.Rows)},
		},
	})
	md.PlainText("")

	if run.Rows > 0 {
		w.writeTitleChart(md, run)
	}

	switch {
	case run.Aborted():
		md.Warningf("Collection stopped early: %s. Everything fetched before the error was exported.", run.ErrorNote)
	case run.Rows == 0:
		md.Note("No endpoints matched the title allow-list.")
	default:
		md.Tipf("%d endpoint(s) matched the title allow-list.", run.Rows)
	}
	md.PlainText("")
}

// writeTitleChart writes a mermaid pie chart of matched-title counts.
func (w *MarkdownWriter) writeTitleChart(md *markdown.Markdown, run *model.CollectionRun) {
	counts := make(map[string]int)
	for i := range run.FlattenedRows {
		if title := run.FlattenedRows[i].HTTPHTMLTitle; title != nil {
			counts[*title]++
		}
	}
	if len(counts) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Matched Title Distribution"),
		piechart.WithShowData(true),
	)
	// Iterate the allow-list so the chart order is stable.
	for _, title := range run.Titles {
		if n := counts[title]; n > 0 {
			chart.LabelAndIntValue(title, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeArtifacts writes the output file section.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, run *model.CollectionRun) {
	md.H2("Artifacts")
	md.PlainText("")

	if run.JSONLPath == "" && run.CSVPath == "" {
		md.PlainText("No artifacts were written.")
		md.PlainText("")
		return
	}

	items := make([]string, 0, 2)
	if run.JSONLPath != "" {
		items = append(items, "Raw host documents: `"+run.JSONLPath+"`")
	}
	if run.CSVPath != "" {
		items = append(items, "Flattened rows: `"+run.CSVPath+"`")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeMatches writes a table of matched endpoints, capped for readability.
func (w *MarkdownWriter) writeMatches(md *markdown.Markdown, run *model.CollectionRun) {
	if len(run.FlattenedRows) == 0 {
		return
	}

	md.H2("Matched Endpoints")
	md.PlainText("")

	limit := len(run.FlattenedRows)
	if limit > maxRowsInTable {
		limit = maxRowsInTable
	}

	rows := make([][]string, 0, limit)
	for i := 0; i < limit; i++ {
		r := &run.FlattenedRows[i]
		rows = append(rows, []string{
			mdCell(r.IP),
			mdIntCell(r.Port),
			mdCell(r.Country),
			mdCell(r.SoftwareProduct),
			truncateString(mdCell(r.HTTPHTMLTitle), 50),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"IP", "Port", "Country", "Software", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(run.FlattenedRows) > maxRowsInTable {
		md.PlainTextf("Showing %d of %d rows; see the CSV artifact for the full set.",
			maxRowsInTable, len(run.FlattenedRows))
		md.PlainText("")
	}
}

func mdCell(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func mdIntCell(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
