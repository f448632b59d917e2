package model

import "strings"

// LinkCandidate is an anchor element scored as a plausible ESG report PDF.
// The JSON field names are the ones written to esg-pdf-urls.json.
//
// The four flags are independent signals and are not mutually exclusive.
type LinkCandidate struct {
	// URL is the absolute href of the anchor.
	URL string `json:"url"`

	// Text is the trimmed visible text of the anchor.
	Text string `json:"text"`

	// Title is the anchor's title attribute.
	Title string `json:"title"`

	// Class is the anchor's class attribute.
	Class string `json:"className"`

	// ID is the anchor's id attribute.
	ID string `json:"id"`

	// IsDirectPDF is true when the href points at a .pdf resource.
	IsDirectPDF bool `json:"isDirectPdf"`

	// IsDownloadLink is true when the anchor reads like a download action.
	IsDownloadLink bool `json:"isDownloadLink"`

	// IsReportLink is true when the anchor mentions a report-like document.
	IsReportLink bool `json:"isReportLink"`

	// IsButtonLink is true when the anchor is shaped like a button.
	IsButtonLink bool `json:"isButtonLink"`
}

// Signals returns the names of the flags that are set, in a fixed order.
func (l LinkCandidate) Signals() []string {
	signals := make([]string, 0, 4)
	if l.IsDirectPDF {
		signals = append(signals, "direct")
	}
	if l.IsDownloadLink {
		signals = append(signals, "download")
	}
	if l.IsReportLink {
		signals = append(signals, "report")
	}
	if l.IsButtonLink {
		signals = append(signals, "button")
	}
	return signals
}

// SignalString joins Signals with commas, or returns "-" when none are set.
func (l LinkCandidate) SignalString() string {
	signals := l.Signals()
	if len(signals) == 0 {
		return "-"
	}
	return strings.Join(signals, ",")
}

// DisplayText returns the anchor text, falling back to the title and
// then to the URL so that reports never show an empty label.
func (l LinkCandidate) DisplayText() string {
	if l.Text != "" {
		return l.Text
	}
	if l.Title != "" {
		return l.Title
	}
	return l.URL
}
