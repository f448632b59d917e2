package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/esgscan/internal/model"
)

// Fetcher loads a page and returns its rendered HTML.
// Implementations must honor ctx cancellation and return a *FetchError
// on failure.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error)
}

// options holds settings shared by both fetchers.
type options struct {
	timeout        time.Duration
	userAgent      string
	acceptLanguage string
	maxBodySize    int64
	logger         *slog.Logger
}

// Option configures a fetcher.
type Option func(*options)

// WithTimeout bounds a single fetch, including rendering.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithAcceptLanguage sets the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(o *options) {
		o.acceptLanguage = lang
	}
}

// WithMaxBodySize limits how much HTML is kept per page.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		o.maxBodySize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{
		timeout:        15 * time.Second,
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		acceptLanguage: "en-US,en;q=0.9",
		maxBodySize:    model.MaxHTMLSize,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
