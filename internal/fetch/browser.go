package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/nao1215/esgscan/internal/model"
)

// BrowserFetcher renders pages in headless Chrome. One browser process is
// shared by the whole run and every fetch opens its own tab.
type BrowserFetcher struct {
	opts       options
	execPath   string
	proxy      string
	settle     time.Duration
	allocCtx   context.Context
	allocStop  context.CancelFunc
	browserCtx context.Context
	browserEnd context.CancelFunc
	mu         sync.Mutex
	closed     bool
}

// BrowserOption configures a BrowserFetcher beyond the shared options.
type BrowserOption func(*BrowserFetcher)

// WithExecPath points chromedp at a specific Chrome binary.
func WithExecPath(path string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.execPath = path
	}
}

// WithProxy routes the browser through a SOCKS5 proxy at address.
func WithProxy(address string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.proxy = address
	}
}

// WithSettleDelay sets how long to wait after the body is ready so that
// client-side scripts can inject download links.
func WithSettleDelay(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) {
		b.settle = d
	}
}

// NewBrowserFetcher starts Chrome and returns a fetcher bound to it.
// Close must be called to terminate the browser.
func NewBrowserFetcher(opts []Option, browserOpts ...BrowserOption) (*BrowserFetcher, error) {
	b := &BrowserFetcher{
		opts:   newOptions(opts),
		settle: time.Second,
	}
	for _, opt := range browserOpts {
		opt(b)
	}

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(b.opts.userAgent),
	}
	if b.execPath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(b.execPath))
	}
	if b.proxy != "" {
		if err := ValidateProxyAddress(b.proxy); err != nil {
			return nil, err
		}
		execOpts = append(execOpts, chromedp.ProxyServer(BrowserProxyServer(b.proxy)))
	}

	b.allocCtx, b.allocStop = chromedp.NewExecAllocator(context.Background(), execOpts...)
	b.browserCtx, b.browserEnd = chromedp.NewContext(b.allocCtx)

	// The first Run launches the browser process.
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: %w", ErrBrowserUnavailable, err)
	}

	b.opts.logger.Debug("browser started", "exec_path", b.execPath, "settle", b.settle)
	return b, nil
}

// Fetch implements Fetcher.
func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, &FetchError{Kind: KindNavigation, URL: rawURL, Message: "browser closed", Cause: ErrBrowserUnavailable}
	}

	tabCtx, closeTab := chromedp.NewContext(b.browserCtx)
	defer closeTab()

	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	runCtx, cancel := context.WithTimeout(tabCtx, b.opts.timeout)
	defer cancel()

	var (
		title    string
		html     string
		finalURL string
	)

	start := time.Now()
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": b.opts.acceptLanguage}),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, classify(ctx, rawURL, err, KindCancelled)
		}
		return nil, classify(runCtx, rawURL, err, KindNavigation)
	}

	html = model.CutHTML(html, int(b.opts.maxBodySize))

	page := model.NewFetchedPage(rawURL, finalURL, title, html)
	b.opts.logger.Debug("page rendered",
		"url", rawURL,
		"final_url", page.FinalURL,
		"bytes", len(html),
		"duration", time.Since(start),
	)
	return page, nil
}

// Close terminates the browser. It is safe to call more than once.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.browserEnd != nil {
		b.browserEnd()
	}
	if b.allocStop != nil {
		b.allocStop()
	}
	return nil
}
