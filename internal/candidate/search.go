package candidate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/esgscan/internal/model"
)

// DefaultMaxSearchResults caps the URLs taken from one results page.
const DefaultMaxSearchResults = 5

// searchQuerySuffix is appended to the company name to form the query.
const searchQuerySuffix = " sustainability report ESG"

// esgKeywords mark a search result as ESG-related when found in its
// title or URL.
var esgKeywords = []string{
	"esg",
	"environmental",
	"social",
	"governance",
	"sustainability",
	"csr",
	"corporate social responsibility",
	"impact report",
	"sustainability report",
	"esg report",
	"annual report",
}

// redirectParams are query parameters search engines use to wrap the real
// result URL in a tracking redirect.
var redirectParams = []string{"uddg", "q", "url", "u"}

// SearchOption configures a SearchEngineQuery.
type SearchOption func(*SearchEngineQuery)

// WithMaxResults sets the number of result URLs kept.
func WithMaxResults(n int) SearchOption {
	return func(s *SearchEngineQuery) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(logger *slog.Logger) SearchOption {
	return func(s *SearchEngineQuery) {
		s.logger = logger
	}
}

// SearchEngineQuery sources candidates from a search engine results page.
type SearchEngineQuery struct {
	fetcher    PageFetcher
	engine     string
	baseURL    string
	maxResults int
	logger     *slog.Logger
}

// NewSearchEngineQuery creates a search strategy. baseURL is the engine's
// query URL that the escaped query is appended to, for example
// "https://duckduckgo.com/html/?q=".
func NewSearchEngineQuery(fetcher PageFetcher, engine, baseURL string, opts ...SearchOption) *SearchEngineQuery {
	s := &SearchEngineQuery{
		fetcher:    fetcher,
		engine:     engine,
		baseURL:    baseURL,
		maxResults: DefaultMaxSearchResults,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "search".
func (s *SearchEngineQuery) Name() string {
	return StrategySearch
}

// QueryURL returns the results page URL for a company.
func (s *SearchEngineQuery) QueryURL(company string) string {
	return s.baseURL + url.QueryEscape(strings.TrimSpace(company)+searchQuerySuffix)
}

// Candidates fetches the results page and returns up to maxResults
// ESG-related result links in page order, without duplicates.
func (s *SearchEngineQuery) Candidates(ctx context.Context, company string) ([]model.CandidateURL, error) {
	if strings.TrimSpace(company) == "" {
		return nil, ErrEmptyCompanyName
	}
	if s.baseURL == "" {
		return nil, ErrNoSearchBase
	}

	queryURL := s.QueryURL(company)
	s.logger.Debug("querying search engine", "engine", s.engine, "url", queryURL)

	page, err := s.fetcher.Fetch(ctx, queryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}

	results, err := ParseSearchResults(page, s.maxResults)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search results parsed", "engine", s.engine, "count", len(results))
	return results, nil
}

// ParseSearchResults extracts ESG-related result links from a results page.
// Links back to the engine's own host are ignored and tracking redirects
// are unwrapped.
func ParseSearchResults(page *model.FetchedPage, limit int) ([]model.CandidateURL, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	base, err := url.Parse(page.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid search results URL %q: %w", page.BaseURL(), err)
	}
	engineHost := strings.TrimPrefix(strings.ToLower(base.Hostname()), "www.")

	seen := make(map[string]bool)
	results := make([]model.CandidateURL, 0, limit)

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		target := resolveResult(base, href)
		if target == nil {
			return true
		}

		host := strings.TrimPrefix(strings.ToLower(target.Hostname()), "www.")
		if host == "" || host == engineHost || strings.HasSuffix(host, "."+engineHost) {
			return true
		}

		link := target.String()
		if seen[link] || !IsESGRelated(sel.Text(), link) {
			return true
		}

		seen[link] = true
		results = append(results, model.CandidateURL{URL: link, NameForm: model.NameFormSearch})
		return limit <= 0 || len(results) < limit
	})

	return results, nil
}

// resolveResult resolves href against the results page and unwraps
// engine redirect links. It returns nil for anything that is not an
// absolute http(s) URL.
func resolveResult(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)

	if strings.EqualFold(resolved.Hostname(), base.Hostname()) {
		query := resolved.Query()
		for _, p := range redirectParams {
			if wrapped := query.Get(p); strings.HasPrefix(wrapped, "http://") || strings.HasPrefix(wrapped, "https://") {
				if u, err := url.Parse(wrapped); err == nil {
					resolved = u
					break
				}
			}
		}
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	resolved.Fragment = ""
	return resolved
}

// IsESGRelated reports whether a result title or URL mentions an ESG keyword.
func IsESGRelated(title, link string) bool {
	text := strings.ToLower(title + " " + link)
	for _, keyword := range esgKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
