package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/moltwatch/censyscollect/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display at the end of a run.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(run *model.CollectionRun) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n==== DONE ====\n")
	sb.WriteString(fmt.Sprintf("pages fetched : %d\n", run.Pages))
	sb.WriteString(fmt.Sprintf("hosts fetched : %d\n", run.Hosts))
	sb.WriteString(fmt.Sprintf("rows matched  : %d\n", run.Rows))
	if run.JSONLPath != "" {
		sb.WriteString(fmt.Sprintf("raw jsonl     : %s\n", run.JSONLPath))
	}
	if run.CSVPath != "" {
		sb.WriteString(fmt.Sprintf("summary csv   : %s\n", run.CSVPath))
	}
	if run.Aborted() {
		sb.WriteString(fmt.Sprintf("note          : %s\n", run.ErrorNote))
	}

	if w.verbose {
		sb.WriteString(fmt.Sprintf("query         : %s\n", run.Query))
		sb.WriteString(fmt.Sprintf("titles        : %s\n", strings.Join(run.Titles, ", ")))
		if !run.FinishedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("duration      : %s\n", run.FinishedAt.Sub(run.StartedAt).Round(0)))
		}
	}

	return w.output.Write([]byte(sb.String()))
}
