package crawler

import (
	"testing"

	"github.com/nao1215/esgscan/internal/model"
)

// TestParseText tests visible text extraction.
func TestParseText(t *testing.T) {
	t.Parallel()

	html := `<html><head><title> Acme  ESG </title><style>.carbon{}</style></head>
<body><script>var water = 1;</script>
<h1>Our   impact</h1><table><tr><td>1</td></tr></table><table></table>
<noscript>enable javascript</noscript><p>Board oversight</p></body></html>`

	got, err := ParseText(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Title != "Acme ESG" {
		t.Errorf("expected collapsed title, got %q", got.Title)
	}
	if got.Tables != 2 {
		t.Errorf("expected 2 tables, got %d", got.Tables)
	}
	if got.Text != "Our impact 1 Board oversight" {
		t.Errorf("unexpected text %q", got.Text)
	}
}

// TestExtractESGData tests keyword-presence extraction.
func TestExtractESGData(t *testing.T) {
	t.Parallel()

	page := model.NewFetchedPage(
		"https://acme.example/esg",
		"https://www.acme.example/esg",
		"Acme ESG",
		`<html><body><p>We cut Emissions and improved Employee safety.</p>
<p>Our board reviews ethics.</p><script>water</script><table></table></body></html>`,
	)

	data := ExtractESGData(page, "Acme Corp")

	if _, ok := data.Environmental["carbonFootprint"]; !ok {
		t.Error("expected carbon footprint hit")
	}
	if _, ok := data.Environmental["water"]; ok {
		t.Error("expected script text to be ignored")
	}
	if len(data.Social) != 2 {
		t.Errorf("expected workforce and safety hits, got %v", data.Social)
	}
	if len(data.Governance) != 2 {
		t.Errorf("expected board and ethics hits, got %v", data.Governance)
	}
	if data.General.Company != "Acme Corp" || data.General.URL != "https://www.acme.example/esg" {
		t.Errorf("unexpected general info %+v", data.General)
	}
	if data.General.Tables != 1 {
		t.Errorf("expected 1 table, got %d", data.General.Tables)
	}
}
