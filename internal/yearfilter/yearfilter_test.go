package yearfilter

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/esgscan/internal/model"
)

func intPtr(v int) *int {
	return &v
}

// TestNewYearSet tests year set construction.
func TestNewYearSet(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    *int
		stop     *int
		expected model.YearSet
		wantErr  error
	}{
		{"range is inclusive", intPtr(2021), intPtr(2023), model.YearSet{"2021", "2022", "2023"}, nil},
		{"start only is a singleton", intPtr(2022), nil, model.YearSet{"2022"}, nil},
		{"neither uses the current year", nil, nil, model.YearSet{"2025"}, nil},
		{"equal bounds is a singleton", intPtr(2023), intPtr(2023), model.YearSet{"2023"}, nil},
		{"stop without start is rejected", nil, intPtr(2023), nil, ErrStopWithoutStart},
		{"stop before start is rejected", intPtr(2023), intPtr(2021), nil, ErrStopBeforeStart},
		{"three-digit year is rejected", intPtr(999), nil, nil, ErrYearOutOfRange},
		{"five-digit stop year is rejected", intPtr(2020), intPtr(20230), nil, ErrYearOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewYearSet(tt.start, tt.stop, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestFilter tests link filtering by year.
func TestFilter(t *testing.T) {
	t.Parallel()

	links := []model.LinkCandidate{
		{URL: "https://acme.example/esg", Text: "2023 Sustainability Report"},
		{URL: "https://acme.example/reports/2023.pdf", Text: "Download"},
		{URL: "https://acme.example/reports/2022.pdf", Text: "Download"},
		{URL: "https://acme.example/esg_2023_summary.PDF", Text: "Summary"},
		{URL: "https://acme.example/report.pdf", Text: "Report"},
	}

	got := Filter(links, model.YearSet{"2023"})

	expected := []string{
		"https://acme.example/esg",
		"https://acme.example/reports/2023.pdf",
		"https://acme.example/esg_2023_summary.PDF",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d links, got %d", len(expected), len(got))
	}
	for i, l := range got {
		if l.URL != expected[i] {
			t.Errorf("expected %q at %d, got %q", expected[i], i, l.URL)
		}
	}

	t.Run("any year of the set matches", func(t *testing.T) {
		t.Parallel()

		got := Filter(links, model.YearSet{"2021", "2022"})
		if len(got) != 1 || got[0].URL != "https://acme.example/reports/2022.pdf" {
			t.Errorf("expected only the 2022 link, got %+v", got)
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		t.Parallel()

		if len(links) != 5 {
			t.Errorf("expected input to keep 5 links, got %d", len(links))
		}
	})
}

// TestApply tests in-place filtering of scrape results.
func TestApply(t *testing.T) {
	t.Parallel()

	results := []model.ScrapeResult{
		{Company: "Acme", PDFLinks: []model.LinkCandidate{
			{URL: "https://acme.example/esg-2022.pdf"},
			{URL: "https://acme.example/esg-2023.pdf"},
		}},
		{Company: "Acme", PDFLinks: []model.LinkCandidate{
			{URL: "https://acme.example/esg-2021.pdf"},
		}},
	}

	before, after := Apply(results, model.YearSet{"2023"})

	if before != 3 || after != 1 {
		t.Errorf("expected 3 before and 1 after, got %d and %d", before, after)
	}
	if len(results[0].PDFLinks) != 1 || results[0].PDFLinks[0].URL != "https://acme.example/esg-2023.pdf" {
		t.Errorf("unexpected first result links %+v", results[0].PDFLinks)
	}
	if results[1].PDFLinks == nil || len(results[1].PDFLinks) != 0 {
		t.Errorf("expected an empty, non-nil link slice, got %#v", results[1].PDFLinks)
	}
}
