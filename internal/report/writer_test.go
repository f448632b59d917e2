package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/esgscan/internal/model"
)

// createTestRun creates a run with one company and one result.
func createTestRun() *model.RunReport {
	run := model.NewRunReport("run-1", model.YearSet{"2023"}, "direct")

	company := model.NewCompanyReport("Acme Corp", run.Years)
	company.Candidates = []model.CandidateURL{{URL: "https://www.acmecorp.com/esg"}, {URL: "https://acmecorp.com/esg"}}
	company.AddAttempt(model.Attempt{URL: "https://acmecorp.com/esg", Outcome: model.OutcomeRejected, Reason: "error_title"})
	company.AddAttempt(model.Attempt{URL: "https://www.acmecorp.com/esg", Outcome: model.OutcomeAccepted, LinkCount: 2})

	data := model.NewExtractedData()
	data.Environmental["carbon"] = "carbon emissions fell"
	company.AddResult(model.ScrapeResult{
		Company:       "Acme Corp",
		SourceTitle:   "Acme Sustainability",
		SourceURL:     "https://www.acmecorp.com/esg",
		ExtractedData: data,
		PDFLinks: []model.LinkCandidate{
			{URL: "https://www.acmecorp.com/esg-2023.pdf", Text: "2023 ESG Report", IsDirectPDF: true, IsReportLink: true},
		},
	})
	company.LinksBeforeFilter = 2
	company.Documents = []model.DocumentSummary{
		{URL: "https://www.acmecorp.com/esg-2023.pdf", Filename: "acme_corp_esg-2023.pdf", Pages: 12, Chunks: 30},
	}
	run.Companies = append(run.Companies, company)
	return run
}

// TestSimpleWriter tests the terminal summary.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one block per result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"ESG Scraping Report",
			"1. Acme Corp",
			"Source: Acme Sustainability",
			"URL: https://www.acmecorp.com/esg",
			"Environmental metrics: 1",
			"Social metrics: 0",
			"1 accepted, 1 rejected",
			"1/2 links kept",
			"12 pages, 30 chunks",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("verbose lists links and attempts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[direct,report]") {
			t.Errorf("expected link signals in output, got:\n%s", output)
		}
		if !strings.Contains(output, "[rejected] https://acmecorp.com/esg error_title") {
			t.Errorf("expected attempt line in output, got:\n%s", output)
		}
	})

	t.Run("reports empty runs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		run := model.NewRunReport("run-2", model.YearSet{"2023"}, "direct")
		if _, err := NewSimpleWriter(&buf).Write(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No results to report") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("wraps the run with the version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, "v1.2.3").Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Version string `json:"version"`
			Run     struct {
				ID        string `json:"id"`
				Companies []struct {
					Attempts []struct {
						Outcome string `json:"outcome"`
					} `json:"attempts"`
				} `json:"companies"`
			} `json:"run"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Run.ID != "run-1" {
			t.Errorf("unexpected header: %+v", decoded)
		}
		if got := decoded.Run.Companies[0].Attempts[0].Outcome; got != "rejected" {
			t.Errorf("expected outcome as text, got %q", got)
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, "dev", WithPrettyPrint()).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"run\"") {
			t.Errorf("expected indented output, got %s", buf.String()[:80])
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# ESG Report Links",
		"## Acme Corp",
		"### Acme Sustainability",
		"https://www.acmecorp.com/esg-2023.pdf",
		"Fetch Failed",
		"No Links",
		"mermaid",
		"acme_corp_esg-2023.pdf",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

// TestWriteDiff tests diff rendering in every format.
func TestWriteDiff(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	diff := model.NewRunDiff("Acme Corp",
		model.RunSnapshot{RunID: "old", StartedAt: at, Links: []string{"https://x.com/2022.pdf"}},
		model.RunSnapshot{RunID: "new", StartedAt: at.Add(time.Hour), Links: []string{"https://x.com/2023.pdf"}},
	)

	tests := []struct {
		format string
		want   []string
	}{
		{FormatSimple, []string{"+ https://x.com/2023.pdf", "- https://x.com/2022.pdf", "1 added, 1 removed"}},
		{FormatMarkdown, []string{"### Added", "### Removed", "https://x.com/2023.pdf"}},
		{FormatJSON, []string{`"added"`, `"old_run_id": "old"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if _, err := NewWriter(tt.format, &buf, "dev").WriteDiff(diff); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
				}
			}
		})
	}
}

// TestWriteOutputFile tests the esg-pdf-urls.json artifact.
func TestWriteOutputFile(t *testing.T) {
	t.Parallel()

	t.Run("writes an indented array", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "esg-pdf-urls.json")
		if err := WriteOutputFile(path, createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(string(data), "[\n  {\n    \"company\": \"Acme Corp\"") {
			t.Errorf("unexpected layout:\n%s", data)
		}
		if !strings.Contains(string(data), `"isDirectPdf": true`) {
			t.Errorf("expected link flags, got:\n%s", data)
		}
	})

	t.Run("query strings in URLs are not HTML escaped", func(t *testing.T) {
		t.Parallel()

		run := model.NewRunReport("r", model.YearSet{"2023"}, "direct")
		company := model.NewCompanyReport("Acme Corp", model.YearSet{"2023"})
		company.AddResult(model.ScrapeResult{
			Company:   "Acme Corp",
			SourceURL: "https://www.acmecorp.com/esg?lang=en&region=us",
			PDFLinks: []model.LinkCandidate{{
				URL:         "https://cdn.acmecorp.com/get?file=esg-2023.pdf&sig=<abc>",
				IsDirectPDF: true,
			}},
		})
		run.Companies = append(run.Companies, company)

		path := filepath.Join(t.TempDir(), "esg-pdf-urls.json")
		if err := WriteOutputFile(path, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), `"url": "https://cdn.acmecorp.com/get?file=esg-2023.pdf&sig=<abc>"`) {
			t.Errorf("expected the raw link URL, got:\n%s", data)
		}
		if strings.Contains(string(data), `\u0026`) {
			t.Errorf("expected no escaped ampersands, got:\n%s", data)
		}
		if strings.HasSuffix(string(data), "\n") {
			t.Error("expected no trailing newline")
		}
	})

	t.Run("empty run writes an empty array", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "esg-pdf-urls.json")
		if err := WriteOutputFile(path, model.NewRunReport("r", model.YearSet{"2023"}, "direct")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected [], got %q", data)
		}
	})
}

// TestTruncateString tests rune-aware truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("Nachhaltigkeitsbericht", 10); got != "Nachhal..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := truncateString("ÉÉÉÉ", 3); got != "ÉÉÉ" {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("unexpected truncation %q", got)
	}
}
