package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/esgscan/internal/model"
)

// SimpleWriter outputs a plain-text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-attempt and per-link detail.
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
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run summary: one block per result with its source,
// URL and metric counts.
func (w *SimpleWriter) Write(run *model.RunReport) (int, error) {
	var sb strings.Builder

	results := run.Results()
	if len(results) == 0 {
		sb.WriteString("No results to report\n")
		w.writeCompanies(&sb, run)
		return io.WriteString(w.output, sb.String())
	}

	sb.WriteString("\nESG Scraping Report\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Total results: %d\n", len(results))
	fmt.Fprintf(&sb, "Total PDF links: %d\n", run.LinkCount())
	fmt.Fprintf(&sb, "Years: %s\n", run.Years.String())

	for i, r := range results {
		env, social, gov := r.ExtractedData.MetricCount()
		fmt.Fprintf(&sb, "\n%d. %s\n", i+1, r.Company)
		fmt.Fprintf(&sb, "   Source: %s\n", r.SourceTitle)
		fmt.Fprintf(&sb, "   URL: %s\n", r.SourceURL)
		if r.IsSubpage() {
			fmt.Fprintf(&sb, "   Parent: %s\n", r.ParentURL)
		}
		fmt.Fprintf(&sb, "   Environmental metrics: %d\n", env)
		fmt.Fprintf(&sb, "   Social metrics: %d\n", social)
		fmt.Fprintf(&sb, "   Governance metrics: %d\n", gov)
		fmt.Fprintf(&sb, "   PDF links: %d\n", len(r.PDFLinks))

		if w.verbose {
			for _, l := range r.PDFLinks {
				fmt.Fprintf(&sb, "     - %s (%s) [%s]\n", l.DisplayText(), l.URL, l.SignalString())
			}
		}
	}

	w.writeCompanies(&sb, run)
	return io.WriteString(w.output, sb.String())
}

// writeCompanies writes the per-company probe counts.
func (w *SimpleWriter) writeCompanies(sb *strings.Builder, run *model.RunReport) {
	if len(run.Companies) == 0 {
		return
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 50))
	sb.WriteString("\n")
	for _, c := range run.Companies {
		fmt.Fprintf(sb, "%s: %d candidates, %d accepted, %d rejected, %d no links, %d failed, %d/%d links kept\n",
			c.Company,
			len(c.Candidates),
			c.CountOutcome(model.OutcomeAccepted),
			c.CountOutcome(model.OutcomeRejected),
			c.CountOutcome(model.OutcomeNoLinks),
			c.CountOutcome(model.OutcomeFetchFailed),
			c.LinkCount(),
			c.LinksBeforeFilter,
		)
		if c.TimedOut {
			sb.WriteString("  interrupted (partial results)\n")
		}
		for _, d := range c.Documents {
			if d.Error != "" {
				fmt.Fprintf(sb, "  document %s: failed: %s\n", d.Filename, d.Error)
				continue
			}
			fmt.Fprintf(sb, "  document %s: %d pages, %d chunks\n", d.Filename, d.Pages, d.Chunks)
		}
		if w.verbose {
			for _, a := range c.Attempts {
				fmt.Fprintf(sb, "  [%s] %s %s\n", a.Outcome, a.URL, a.Reason)
			}
		}
	}
}

// WriteDiff outputs added and removed links.
func (w *SimpleWriter) WriteDiff(diff *model.RunDiff) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s (%s) -> %s (%s)\n",
		diff.Company,
		diff.OldRunID, diff.OldAt.Format("2006-01-02 15:04"),
		diff.NewRunID, diff.NewAt.Format("2006-01-02 15:04"),
	)
	if !diff.HasChanges() {
		fmt.Fprintf(&sb, "  no changes (%d links)\n", diff.Unchanged)
		return io.WriteString(w.output, sb.String())
	}
	for _, l := range diff.Added {
		fmt.Fprintf(&sb, "  + %s\n", l)
	}
	for _, l := range diff.Removed {
		fmt.Fprintf(&sb, "  - %s\n", l)
	}
	fmt.Fprintf(&sb, "  %d added, %d removed, %d unchanged\n", len(diff.Added), len(diff.Removed), diff.Unchanged)
	return io.WriteString(w.output, sb.String())
}
