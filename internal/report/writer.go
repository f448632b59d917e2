package report

import (
	"io"

	"github.com/nao1215/esgscan/internal/model"
)

// Writer renders run reports and history diffs.
type Writer interface {
	// Write outputs the run report.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.RunReport) (int, error)

	// WriteDiff outputs the link difference between two runs.
	WriteDiff(diff *model.RunDiff) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Format names accepted by NewWriter.
const (
	FormatSimple   = "simple"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// NewWriter returns the writer for format. Unknown formats fall back to
// the simple writer.
func NewWriter(format string, output io.Writer, version string) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, version, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}
