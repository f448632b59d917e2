package model

import "time"

// ExtractedData is the keyword-hit map built from a validated page's
// visible text. Values are short human-readable notes; only the presence
// of a key carries meaning.
type ExtractedData struct {
	Environmental map[string]string `json:"environmental"`
	Social        map[string]string `json:"social"`
	Governance    map[string]string `json:"governance"`
	General       GeneralInfo       `json:"general"`
}

// GeneralInfo holds page-level facts recorded next to the keyword hits.
type GeneralInfo struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url"`
	Tables  int    `json:"tables,omitempty"`
}

// NewExtractedData returns an ExtractedData with empty category maps.
func NewExtractedData() ExtractedData {
	return ExtractedData{
		Environmental: make(map[string]string),
		Social:        make(map[string]string),
		Governance:    make(map[string]string),
	}
}

// MetricCount returns the number of keyword hits per category.
func (d ExtractedData) MetricCount() (environmental, social, governance int) {
	return len(d.Environmental), len(d.Social), len(d.Governance)
}

// ScrapeResult is created once per validated page that yielded at least one
// PDF-like link. Only the year filter replaces PDFLinks after creation.
type ScrapeResult struct {
	// Company is the company name as given by the user.
	Company string `json:"company"`

	// SourceTitle is the title of the page the links were harvested from.
	SourceTitle string `json:"source"`

	// SourceURL is the URL that was probed (candidate or subpage URL).
	SourceURL string `json:"url"`

	// ParentURL is the page a subpage was selected from. Empty for
	// top-level candidates.
	ParentURL string `json:"parent_url,omitempty"`

	// ExtractedData is the page's keyword-hit map.
	ExtractedData ExtractedData `json:"data"`

	// PDFLinks are the harvested link candidates in document order.
	PDFLinks []LinkCandidate `json:"pdf_links"`

	// PageHash is the SHA-256 of the page HTML, used to spot unchanged
	// pages across runs.
	PageHash string `json:"page_hash,omitempty"`

	// ScrapedAt is when the page was harvested.
	ScrapedAt time.Time `json:"scraped_at"`
}

// IsSubpage reports whether the result came from a followed subpage.
func (r ScrapeResult) IsSubpage() bool {
	return r.ParentURL != ""
}

// OutputEntry is one element of the esg-pdf-urls.json array.
type OutputEntry struct {
	Company  string          `json:"company"`
	Source   string          `json:"source"`
	URL      string          `json:"url"`
	PDFLinks []LinkCandidate `json:"pdf_links"`
}

// Output converts the result into its esg-pdf-urls.json form.
// A nil link slice is written as an empty array.
func (r ScrapeResult) Output() OutputEntry {
	links := r.PDFLinks
	if links == nil {
		links = []LinkCandidate{}
	}
	return OutputEntry{
		Company:  r.Company,
		Source:   r.SourceTitle,
		URL:      r.SourceURL,
		PDFLinks: links,
	}
}
