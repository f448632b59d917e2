package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/esgscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports as GitHub-flavored Markdown.
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

// Write outputs the run report.
func (w *MarkdownWriter) Write(run *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("ESG Report Links")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + run.ID + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Years", run.Years.String()},
			{"Strategy", run.Strategy},
			{"Companies", strconv.Itoa(len(run.Companies))},
			{"PDF Links", strconv.Itoa(run.LinkCount())},
		},
	})
	md.PlainText("")

	if run.LinkCount() == 0 {
		md.Note("No PDF links matched the requested years.")
		md.PlainText("")
	}

	for _, c := range run.Companies {
		w.writeCompany(md, c)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeCompany(md *markdown.Markdown, c *model.CompanyReport) {
	md.H2(c.Company)
	md.PlainText("")

	if c.TimedOut {
		md.Warning("Interrupted before all candidates were probed; results are partial.")
		md.PlainText("")
	}

	w.writeOutcomes(md, c)

	if len(c.Results) == 0 {
		md.PlainText("No PDF links found.")
		md.PlainText("")
	}

	for _, r := range c.Results {
		heading := r.SourceTitle
		if heading == "" {
			heading = r.SourceURL
		}
		md.H3(heading)
		md.PlainText("")
		md.PlainText(r.SourceURL)
		md.PlainText("")

		rows := make([][]string, 0, len(r.PDFLinks))
		for _, l := range r.PDFLinks {
			rows = append(rows, []string{
				truncateString(l.DisplayText(), 50),
				l.URL,
				l.SignalString(),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Text", "URL", "Signals"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(c.Documents) > 0 {
		rows := make([][]string, 0, len(c.Documents))
		for _, d := range c.Documents {
			status := "ok"
			if d.Error != "" {
				status = truncateString(d.Error, 60)
			}
			rows = append(rows, []string{d.Filename, strconv.Itoa(d.Pages), strconv.Itoa(d.Chunks), status})
		}
		md.H3("Documents")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"File", "Pages", "Chunks", "Status"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeOutcomes writes the attempt outcome table and a pie chart of it.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, c *model.CompanyReport) {
	outcomes := []model.Outcome{
		model.OutcomeAccepted,
		model.OutcomeNoLinks,
		model.OutcomeRejected,
		model.OutcomeFetchFailed,
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Candidate Outcomes"),
		piechart.WithShowData(true),
	)

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		n := c.CountOutcome(o)
		label := w.title.String(strings.ReplaceAll(o.String(), "_", " "))
		rows = append(rows, []string{label, strconv.Itoa(n)})
		if n > 0 {
			chart.LabelAndIntValue(label, uint64(n))
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Attempts"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(c.Attempts) > 0 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// WriteDiff outputs the link difference between two runs.
func (w *MarkdownWriter) WriteDiff(diff *model.RunDiff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H2(diff.Company)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Run", "Date"},
		Rows: [][]string{
			{"Old", "`" + diff.OldRunID + "`", diff.OldAt.Format("2006-01-02 15:04")},
			{"New", "`" + diff.NewRunID + "`", diff.NewAt.Format("2006-01-02 15:04")},
		},
	})
	md.PlainText("")

	if !diff.HasChanges() {
		md.Tip("No changes between the two runs.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	if len(diff.Added) > 0 {
		md.H3("Added")
		md.PlainText("")
		md.BulletList(diff.Added...)
		md.PlainText("")
	}
	if len(diff.Removed) > 0 {
		md.H3("Removed")
		md.PlainText("")
		md.BulletList(diff.Removed...)
		md.PlainText("")
	}
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by esgscan*")
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
