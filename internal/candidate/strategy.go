package candidate

import (
	"context"

	"github.com/nao1215/esgscan/internal/model"
)

// Strategy names.
const (
	StrategyDirect = "direct"
	StrategySearch = "search"
)

// Strategy produces the candidate URLs to probe for a company.
type Strategy interface {
	// Name returns the strategy name for logging and reports.
	Name() string

	// Candidates returns the URLs to probe in priority order.
	Candidates(ctx context.Context, company string) ([]model.CandidateURL, error)
}

// PageFetcher is the subset of a page fetcher the search strategy needs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
}

// DirectURLGuess builds candidates from the company name alone.
type DirectURLGuess struct {
	generator *Generator
}

// NewDirectURLGuess creates a DirectURLGuess. A nil generator uses the
// built-in override table only.
func NewDirectURLGuess(generator *Generator) *DirectURLGuess {
	if generator == nil {
		generator = NewGenerator()
	}
	return &DirectURLGuess{generator: generator}
}

// Name returns "direct".
func (d *DirectURLGuess) Name() string {
	return StrategyDirect
}

// Candidates returns the generated URLs. It does no I/O.
func (d *DirectURLGuess) Candidates(_ context.Context, company string) ([]model.CandidateURL, error) {
	return d.generator.Generate(company)
}
