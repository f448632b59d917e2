package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/esgscan/internal/candidate"
	"github.com/nao1215/esgscan/internal/crawler"
	"github.com/nao1215/esgscan/internal/document"
	"github.com/nao1215/esgscan/internal/fetch"
	"github.com/nao1215/esgscan/internal/model"
	"github.com/nao1215/esgscan/internal/yearfilter"
)

// Step names.
const (
	StepSource     = "source"
	StepProbe      = "probe"
	StepYearFilter = "year_filter"
	StepDocuments  = "documents"
)

// SourceStep fills report.Candidates from a sourcing strategy. When the
// strategy fails or finds nothing and a fallback is set, the fallback's
// candidates are used instead.
type SourceStep struct {
	strategy candidate.Strategy
	fallback candidate.Strategy
	logger   *slog.Logger
}

// SourceStepOption configures a SourceStep.
type SourceStepOption func(*SourceStep)

// WithFallbackStrategy sets the strategy used when the primary one fails.
func WithFallbackStrategy(s candidate.Strategy) SourceStepOption {
	return func(step *SourceStep) {
		step.fallback = s
	}
}

// WithSourceLogger sets a custom logger for the source step.
func WithSourceLogger(logger *slog.Logger) SourceStepOption {
	return func(step *SourceStep) {
		step.logger = logger
	}
}

// NewSourceStep creates a SourceStep.
func NewSourceStep(strategy candidate.Strategy, opts ...SourceStepOption) *SourceStep {
	s := &SourceStep{
		strategy: strategy,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SourceStep) Name() string {
	return StepSource
}

// Do executes the source step.
func (s *SourceStep) Do(ctx context.Context, report *model.CompanyReport) error {
	candidates, err := s.strategy.Candidates(ctx, report.Company)
	report.Strategy = s.strategy.Name()

	if (err != nil || len(candidates) == 0) && s.fallback != nil && ctx.Err() == nil {
		s.logger.Warn("strategy produced no candidates, using fallback",
			"company", report.Company,
			"strategy", s.strategy.Name(),
			"fallback", s.fallback.Name(),
			"error", err,
		)
		candidates, err = s.fallback.Candidates(ctx, report.Company)
		report.Strategy = s.fallback.Name()
	}
	if err != nil {
		return fmt.Errorf("failed to source candidates: %w", err)
	}

	report.Candidates = candidates
	s.logger.Info("candidate URLs generated",
		"company", report.Company,
		"strategy", report.Strategy,
		"count", len(candidates),
	)
	return nil
}

// ProbeStep visits every candidate in order: fetch, validate, harvest and
// follow subpages. It never stops at the first working page.
type ProbeStep struct {
	fetcher     fetch.Fetcher
	validator   *crawler.Validator
	maxSubpages int
	logger      *slog.Logger
	now         func() time.Time
}

// ProbeStepOption configures a ProbeStep.
type ProbeStepOption func(*ProbeStep)

// WithValidator replaces the default page validator.
func WithValidator(v *crawler.Validator) ProbeStepOption {
	return func(s *ProbeStep) {
		s.validator = v
	}
}

// WithMaxSubpages sets how many subpages are followed per accepted page.
func WithMaxSubpages(n int) ProbeStepOption {
	return func(s *ProbeStep) {
		s.maxSubpages = n
	}
}

// WithProbeLogger sets a custom logger for the probe step.
func WithProbeLogger(logger *slog.Logger) ProbeStepOption {
	return func(s *ProbeStep) {
		s.logger = logger
	}
}

// WithProbeClock overrides the time source used for ScrapedAt.
func WithProbeClock(now func() time.Time) ProbeStepOption {
	return func(s *ProbeStep) {
		s.now = now
	}
}

// NewProbeStep creates a ProbeStep that fetches pages with f.
func NewProbeStep(f fetch.Fetcher, opts ...ProbeStepOption) *ProbeStep {
	s := &ProbeStep{
		fetcher:     f,
		validator:   crawler.NewValidator(),
		maxSubpages: crawler.DefaultMaxSubpages,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return StepProbe
}

// Do executes the probe step. It returns an error only on cancellation.
func (s *ProbeStep) Do(ctx context.Context, report *model.CompanyReport) error {
	for i, c := range report.Candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.logger.Info("trying candidate",
			"company", report.Company,
			"url", c.URL,
			"index", i+1,
			"total", len(report.Candidates),
		)

		result, ok := s.probe(ctx, report, c.URL, "")
		if !ok {
			continue
		}

		for _, sub := range crawler.SelectSubpages(result.PDFLinks, s.maxSubpages) {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.logger.Info("following subpage", "text", sub.Text, "url", sub.URL)
			s.probe(ctx, report, sub.URL, c.URL)
		}
	}

	s.logger.Info("company probed",
		"company", report.Company,
		"results", len(report.Results),
		"links", report.LinkCount(),
		"accepted", report.CountOutcome(model.OutcomeAccepted),
		"rejected", report.CountOutcome(model.OutcomeRejected),
		"fetch_failed", report.CountOutcome(model.OutcomeFetchFailed),
	)
	return nil
}

// probe runs fetch, validate and harvest for one URL, records the attempt
// and appends a result when at least one link was harvested. parent is
// the candidate URL for subpages and empty otherwise.
func (s *ProbeStep) probe(ctx context.Context, report *model.CompanyReport, rawURL, parent string) (model.ScrapeResult, bool) {
	start := time.Now()
	attempt := model.Attempt{URL: rawURL, Subpage: parent != ""}
	defer func() {
		attempt.Duration = time.Since(start)
		report.AddAttempt(attempt)
	}()

	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		attempt.Outcome = model.OutcomeFetchFailed
		attempt.Reason = err.Error()
		var fe *fetch.FetchError
		if errors.As(err, &fe) {
			attempt.Reason = string(fe.Kind)
		}
		s.logger.Warn("could not access page", "url", rawURL, "error", err)
		return model.ScrapeResult{}, false
	}
	attempt.FinalURL = page.FinalURL

	if rejection := s.validator.Check(page.Title, page.HTML); !rejection.OK() {
		attempt.Outcome = model.OutcomeRejected
		attempt.Reason = rejection.String()
		s.logger.Info("page rejected", "url", rawURL, "title", page.Title, "reason", rejection.String())
		return model.ScrapeResult{}, false
	}

	links, err := crawler.Harvest(page)
	if err != nil {
		attempt.Outcome = model.OutcomeNoLinks
		attempt.Reason = err.Error()
		s.logger.Warn("failed to harvest links", "url", rawURL, "error", err)
		return model.ScrapeResult{}, false
	}
	attempt.LinkCount = len(links)
	if len(links) == 0 {
		attempt.Outcome = model.OutcomeNoLinks
		s.logger.Info("no PDF links found", "url", rawURL, "title", page.Title)
		return model.ScrapeResult{}, false
	}

	attempt.Outcome = model.OutcomeAccepted
	result := model.ScrapeResult{
		Company:       report.Company,
		SourceTitle:   page.Title,
		SourceURL:     rawURL,
		ParentURL:     parent,
		ExtractedData: crawler.ExtractESGData(page, report.Company),
		PDFLinks:      links,
		PageHash:      page.ContentHash(),
		ScrapedAt:     s.now(),
	}
	report.AddResult(result)

	s.logger.Info("found working page",
		"url", rawURL,
		"title", page.Title,
		"links", len(links),
		"subpage", parent != "",
	)
	return result, true
}

// YearFilterStep keeps only the links that mention a requested year.
// Results are kept even when no link survives.
type YearFilterStep struct {
	logger *slog.Logger
}

// NewYearFilterStep creates a YearFilterStep.
func NewYearFilterStep(logger *slog.Logger) *YearFilterStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &YearFilterStep{logger: logger}
}

// Name returns the step name.
func (s *YearFilterStep) Name() string {
	return StepYearFilter
}

// Do executes the year filter step.
func (s *YearFilterStep) Do(_ context.Context, report *model.CompanyReport) error {
	before, after := yearfilter.Apply(report.Results, report.Years)
	report.LinksBeforeFilter = before

	s.logger.Info("links filtered by year",
		"company", report.Company,
		"years", report.Years.String(),
		"before", before,
		"after", after,
		"results", len(report.Results),
	)
	return nil
}

// DocumentProcessor processes harvested PDFs.
type DocumentProcessor interface {
	ProcessAll(ctx context.Context, jobs []document.Job) ([]model.DocumentSummary, error)
}

// DocumentStep downloads and chunks the direct PDF links that survived
// the year filter. Failures are recorded per document and never fail the
// step, so the harvested links are written regardless.
type DocumentStep struct {
	processor DocumentProcessor
	maxPDFs   int
	logger    *slog.Logger
}

// NewDocumentStep creates a DocumentStep processing at most maxPDFs
// documents per company. Zero means no limit.
func NewDocumentStep(processor DocumentProcessor, maxPDFs int, logger *slog.Logger) *DocumentStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentStep{processor: processor, maxPDFs: maxPDFs, logger: logger}
}

// Name returns the step name.
func (s *DocumentStep) Name() string {
	return StepDocuments
}

// Do executes the document step.
func (s *DocumentStep) Do(ctx context.Context, report *model.CompanyReport) error {
	jobs := DocumentJobs(report, s.maxPDFs)
	if len(jobs) == 0 {
		s.logger.Debug("no documents to process", "company", report.Company)
		return nil
	}

	summaries, err := s.processor.ProcessAll(ctx, jobs)
	report.Documents = append(report.Documents, summaries...)
	if err != nil && ctx.Err() != nil {
		return err
	}
	return nil
}

// DocumentJobs lists the distinct direct PDF links of a report in result
// order, capped at limit when limit is positive.
func DocumentJobs(report *model.CompanyReport, limit int) []document.Job {
	seen := make(map[string]struct{})
	jobs := make([]document.Job, 0)
	for _, r := range report.Results {
		for _, link := range r.PDFLinks {
			if !link.IsDirectPDF {
				continue
			}
			if _, dup := seen[link.URL]; dup {
				continue
			}
			seen[link.URL] = struct{}{}
			jobs = append(jobs, document.Job{
				URL:      link.URL,
				Filename: crawler.SafeFilename(report.Company, link.Text, link.URL),
				Company:  report.Company,
			})
			if limit > 0 && len(jobs) == limit {
				return jobs
			}
		}
	}
	return jobs
}
