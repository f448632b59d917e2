package document

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/esgscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// Job names one PDF to process.
type Job struct {
	URL      string
	Filename string
	Company  string
}

// BatchProcessor processes several PDFs concurrently with a Processor and
// writes each result as JSONL into the processor's download directory.
type BatchProcessor struct {
	processor   *Processor
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithConcurrency sets the maximum number of PDFs processed at once.
// Default is 2.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the logger used for batch progress.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// NewBatchProcessor creates a BatchProcessor around p.
func NewBatchProcessor(p *Processor, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		processor:   p,
		concurrency: 2,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProcessAll processes every job and returns one summary per job, in job
// order. A failed document is recorded in its summary and never stops the
// others. The error is non-nil only when ctx is cancelled.
func (b *BatchProcessor) ProcessAll(ctx context.Context, jobs []Job) ([]model.DocumentSummary, error) {
	b.logger.Info("processing documents", "total", len(jobs), "concurrency", b.concurrency)
	start := time.Now()

	summaries := make([]model.DocumentSummary, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				summaries[i] = model.DocumentSummary{URL: job.URL, Filename: job.Filename, Error: err.Error()}
				return err
			}
			summaries[i] = b.processOne(ctx, job)
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		b.logger.Warn("document batch stopped", "error", err)
	}

	b.logger.Info("documents processed", "total", len(jobs), "elapsed", time.Since(start))
	return summaries, err
}

func (b *BatchProcessor) processOne(ctx context.Context, job Job) model.DocumentSummary {
	summary := model.DocumentSummary{URL: job.URL, Filename: job.Filename}

	result, err := b.processor.Process(ctx, job.URL, job.Filename, job.Company)
	if err != nil {
		b.logger.Warn("document processing failed", "url", job.URL, "error", err)
		summary.Error = err.Error()
		return summary
	}

	outPath := JSONLPath(b.processor.DownloadDir(), job.Filename)
	if err := SaveJSONL(result, outPath); err != nil {
		b.logger.Warn("failed to save document chunks", "url", job.URL, "error", err)
		summary.Error = err.Error()
		return summary
	}

	summary.Pages = result.Metadata.TotalPages
	summary.Chunks = result.Metadata.TotalChunks
	summary.TextLength = result.Metadata.TotalTextLength
	summary.OutputPath = outPath

	b.logger.Info("document processed",
		"url", job.URL,
		"pages", summary.Pages,
		"chunks", summary.Chunks,
	)
	return summary
}
