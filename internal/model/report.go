package model

import (
	"time"
)

// Outcome classifies what happened when a URL was probed.
type Outcome int

const (
	// OutcomeAccepted means the page validated and yielded PDF-like links.
	OutcomeAccepted Outcome = iota

	// OutcomeNoLinks means the page validated but no link looked like a PDF.
	OutcomeNoLinks

	// OutcomeRejected means the validator judged the page an error or stub page.
	OutcomeRejected

	// OutcomeFetchFailed means the page could not be fetched at all.
	OutcomeFetchFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeNoLinks:
		return "no_links"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFetchFailed:
		return "fetch_failed"
	default:
		return "unknown"
	}
}

// MarshalText lets outcomes appear as strings in JSON reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Attempt records one probe of a candidate or subpage URL.
type Attempt struct {
	URL       string        `json:"url"`
	FinalURL  string        `json:"final_url,omitempty"`
	Subpage   bool          `json:"subpage,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Reason    string        `json:"reason,omitempty"`
	LinkCount int           `json:"link_count"`
	Duration  time.Duration `json:"duration"`
}

// DocumentSummary records the result of processing one harvested PDF.
type DocumentSummary struct {
	URL        string `json:"url"`
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	TextLength int    `json:"text_length"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CompanyReport holds everything collected while probing one company.
// It is the value the pipeline steps read and modify.
type CompanyReport struct {
	// Company is the company name as given.
	Company string `json:"company"`

	// Years is the set the harvested links were filtered by.
	Years YearSet `json:"years"`

	// Strategy is the name of the page sourcing strategy that was used.
	Strategy string `json:"strategy"`

	// Candidates are the URLs in probing order.
	Candidates []CandidateURL `json:"candidates"`

	// Attempts has one entry per probed URL, in probing order.
	Attempts []Attempt `json:"attempts"`

	// Results are the scrape results in the order they were produced.
	Results []ScrapeResult `json:"results"`

	// LinksBeforeFilter is the number of harvested links before year filtering.
	LinksBeforeFilter int `json:"links_before_filter"`

	// Documents lists processed PDFs when document processing is enabled.
	Documents []DocumentSummary `json:"documents,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// StartedAt and FinishedAt bound the company's processing time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// TimedOut is true when the run was cancelled while this company was in progress.
	TimedOut bool `json:"timed_out"`

	// Error is the last step error, if any.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewCompanyReport creates a new report for the given company.
func NewCompanyReport(company string, years YearSet) *CompanyReport {
	return &CompanyReport{
		Company:        company,
		Years:          years,
		Candidates:     make([]CandidateURL, 0),
		Attempts:       make([]Attempt, 0),
		Results:        make([]ScrapeResult, 0),
		PerformedSteps: make([]string, 0),
		StartedAt:      time.Now(),
	}
}

// AddAttempt appends a probe record.
func (r *CompanyReport) AddAttempt(a Attempt) {
	r.Attempts = append(r.Attempts, a)
}

// AddResult appends a scrape result.
func (r *CompanyReport) AddResult(result ScrapeResult) {
	r.Results = append(r.Results, result)
}

// LinkCount returns the number of PDF links across all results.
func (r *CompanyReport) LinkCount() int {
	total := 0
	for _, res := range r.Results {
		total += len(res.PDFLinks)
	}
	return total
}

// CountOutcome returns how many attempts ended with the given outcome.
func (r *CompanyReport) CountOutcome(o Outcome) int {
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome == o {
			n++
		}
	}
	return n
}

// RunReport is the ordered list of company reports of one run.
type RunReport struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	// Years is the requested year set.
	Years YearSet `json:"years"`

	// Strategy is the page sourcing strategy name.
	Strategy string `json:"strategy"`

	// Companies are the per-company reports in processing order.
	Companies []*CompanyReport `json:"companies"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRunReport creates an empty run report.
func NewRunReport(id string, years YearSet, strategy string) *RunReport {
	return &RunReport{
		ID:        id,
		Years:     years,
		Strategy:  strategy,
		Companies: make([]*CompanyReport, 0),
		StartedAt: time.Now(),
	}
}

// Results flattens the scrape results of every company in order.
func (r *RunReport) Results() []ScrapeResult {
	results := make([]ScrapeResult, 0)
	for _, c := range r.Companies {
		results = append(results, c.Results...)
	}
	return results
}

// Entries returns the esg-pdf-urls.json array for the run.
// It is never nil so that an empty run is written as "[]".
func (r *RunReport) Entries() []OutputEntry {
	results := r.Results()
	entries := make([]OutputEntry, 0, len(results))
	for _, res := range results {
		entries = append(entries, res.Output())
	}
	return entries
}

// LinkCount returns the number of PDF links across all companies.
func (r *RunReport) LinkCount() int {
	total := 0
	for _, c := range r.Companies {
		total += c.LinkCount()
	}
	return total
}
