package pipeline

import (
	"log/slog"

	"github.com/nao1215/esgscan/internal/candidate"
	"github.com/nao1215/esgscan/internal/crawler"
	"github.com/nao1215/esgscan/internal/fetch"
)

// DefaultPipelineConfig holds the settings of DefaultPipeline.
type DefaultPipelineConfig struct {
	// Fallback is used when the primary strategy yields no candidates.
	Fallback candidate.Strategy

	// Validator replaces the default page validator when set.
	Validator *crawler.Validator

	// MaxSubpages is how many subpages are followed per accepted page.
	MaxSubpages int

	// Documents enables the document step when set.
	Documents DocumentProcessor

	// MaxPDFs caps the documents processed per company.
	MaxPDFs int

	Logger *slog.Logger
}

// DefaultPipelineOption configures DefaultPipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineFallback sets the fallback sourcing strategy.
func WithPipelineFallback(s candidate.Strategy) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Fallback = s
	}
}

// WithPipelineValidator sets the page validator.
func WithPipelineValidator(v *crawler.Validator) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Validator = v
	}
}

// WithPipelineMaxSubpages sets the subpage limit.
func WithPipelineMaxSubpages(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxSubpages = n
	}
}

// WithPipelineDocuments enables PDF processing of up to maxPDFs documents
// per company.
func WithPipelineDocuments(p DocumentProcessor, maxPDFs int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Documents = p
		c.MaxPDFs = maxPDFs
	}
}

// WithPipelineLogger sets the logger passed to every step.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline builds the standard company pipeline:
// source, probe, year filter and, when enabled, documents.
func DefaultPipeline(f fetch.Fetcher, strategy candidate.Strategy, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		MaxSubpages: crawler.DefaultMaxSubpages,
		Logger:      slog.Default(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p := New(append([]Option{WithLogger(cfg.Logger)}, pipelineOpts...)...)

	sourceOpts := []SourceStepOption{WithSourceLogger(cfg.Logger)}
	if cfg.Fallback != nil {
		sourceOpts = append(sourceOpts, WithFallbackStrategy(cfg.Fallback))
	}

	probeOpts := []ProbeStepOption{
		WithMaxSubpages(cfg.MaxSubpages),
		WithProbeLogger(cfg.Logger),
	}
	if cfg.Validator != nil {
		probeOpts = append(probeOpts, WithValidator(cfg.Validator))
	}

	p.AddSteps(
		NewSourceStep(strategy, sourceOpts...),
		NewProbeStep(f, probeOpts...),
		NewYearFilterStep(cfg.Logger),
	)

	if cfg.Documents != nil {
		p.AddStep(NewDocumentStep(cfg.Documents, cfg.MaxPDFs, cfg.Logger))
	}

	return p
}
