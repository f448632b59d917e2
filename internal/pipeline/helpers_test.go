package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/esgscan/internal/fetch"
	"github.com/nao1215/esgscan/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// validPage returns an HTML document that passes validation and contains
// the given anchors.
func validPage(anchors ...string) string {
	return "<html><head><title>Sustainability</title></head><body><main><p>" +
		strings.Repeat("Our commitment to sustainable operations. ", 20) +
		"</p>" + strings.Join(anchors, "\n") + "</main></body></html>"
}

// stubFetcher serves canned pages and records the fetched URLs.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]*model.FetchedPage
	fetched []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{pages: make(map[string]*model.FetchedPage)}
}

func (f *stubFetcher) add(rawURL, title, html string) {
	f.pages[rawURL] = model.NewFetchedPage(rawURL, "", title, html)
}

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, rawURL)

	if err := ctx.Err(); err != nil {
		return nil, &fetch.FetchError{Kind: fetch.KindCancelled, URL: rawURL, Cause: err}
	}
	page, ok := f.pages[rawURL]
	if !ok {
		return nil, &fetch.FetchError{Kind: fetch.KindNavigation, URL: rawURL, Message: "net::ERR_NAME_NOT_RESOLVED"}
	}
	return page, nil
}

// stubStrategy returns fixed candidates.
type stubStrategy struct {
	name string
	urls []string
	err  error
}

func (s *stubStrategy) Name() string {
	return s.name
}

func (s *stubStrategy) Candidates(_ context.Context, _ string) ([]model.CandidateURL, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.CandidateURL, 0, len(s.urls))
	for _, u := range s.urls {
		out = append(out, model.CandidateURL{URL: u, NameForm: model.NameFormClean})
	}
	return out, nil
}

// acmeCandidates returns n candidate URLs for the Acme Corp scenario.
func acmeCandidates(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://www.acmecorp.com/candidate-%d", i+1)
	}
	return urls
}
