package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/esgscan/internal/model"
)

// DefaultCompanyDelay is the wait between two companies of a run.
const DefaultCompanyDelay = 2 * time.Second

// Waiter blocks for a duration or until ctx is done.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleepWaiter waits on a timer.
type SleepWaiter struct{}

// Wait implements Waiter.
func (SleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Orchestrator runs the company pipeline for every company of a run.
type Orchestrator struct {
	pipeline *Pipeline
	years    model.YearSet
	strategy string
	delay    time.Duration
	waiter   Waiter
	newID    func() string
	logger   *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithCompanyDelay sets the wait between companies.
func WithCompanyDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.delay = d
	}
}

// WithWaiter replaces the timer-based waiter.
func WithWaiter(w Waiter) OrchestratorOption {
	return func(o *Orchestrator) {
		o.waiter = w
	}
}

// WithRunIDFunc sets how run ids are generated. Default is a random UUID.
func WithRunIDFunc(newID func() string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.newID = newID
	}
}

// WithStrategyName records the configured sourcing strategy in the run report.
func WithStrategyName(name string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.strategy = name
	}
}

// WithOrchestratorLogger sets a custom logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator that filters links by years.
func NewOrchestrator(p *Pipeline, years model.YearSet, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		pipeline: p,
		years:    years,
		delay:    DefaultCompanyDelay,
		waiter:   SleepWaiter{},
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes the companies in order and returns the run report.
// The report is always returned. The error is non-nil only when ctx was
// cancelled; the report then holds the companies processed so far, with
// the interrupted company's results year-filtered.
func (o *Orchestrator) Run(ctx context.Context, companies []string) (*model.RunReport, error) {
	run := model.NewRunReport(o.newID(), o.years, o.strategy)
	defer func() { run.FinishedAt = time.Now() }()

	o.logger.Info("starting run",
		"run_id", run.ID,
		"companies", len(companies),
		"years", o.years.String(),
	)

	for i, company := range companies {
		if i > 0 && o.delay > 0 {
			if err := o.waiter.Wait(ctx, o.delay); err != nil {
				return run, err
			}
		}

		report := model.NewCompanyReport(company, o.years)
		run.Companies = append(run.Companies, report)

		o.logger.Info("processing company", "company", company, "index", i+1, "total", len(companies))

		err := o.pipeline.Execute(ctx, report)
		report.FinishedAt = time.Now()

		if ctx.Err() != nil {
			if !slices.Contains(report.PerformedSteps, StepYearFilter) {
				_ = NewYearFilterStep(o.logger).Do(ctx, report) //nolint:errcheck // never fails
			}
			o.logger.Warn("run interrupted", "company", company, "results", len(report.Results))
			return run, ctx.Err()
		}
		if err != nil {
			o.logger.Warn("company finished with error", "company", company, "error", err)
		}
	}

	o.logger.Info("run complete",
		"run_id", run.ID,
		"results", len(run.Results()),
		"links", run.LinkCount(),
	)
	return run, nil
}
