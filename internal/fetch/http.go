package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/nao1215/esgscan/internal/model"
)

// HTTPFetcher fetches pages with plain GET requests. It does not execute
// scripts, so links injected client-side are missing from its HTML.
type HTTPFetcher struct {
	client *http.Client
	opts   options
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets a transport
// with the usual dial and TLS timeouts. Redirects are followed by the
// client and the final URL is taken from the last request.
func NewHTTPFetcher(client *http.Client, opts ...Option) *HTTPFetcher {
	o := newOptions(opts)
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	return &HTTPFetcher{client: client, opts: o}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNavigation, URL: rawURL, Message: "invalid url", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.opts.acceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, rawURL, err, KindNetwork)
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		return nil, classify(ctx, rawURL, err, KindNetwork)
	}

	// Error statuses with a page body go on to validation like a rendered
	// page would; only a bare status has nothing to validate.
	if (resp.StatusCode < 200 || resp.StatusCode > 299) && len(strings.TrimSpace(string(body))) == 0 {
		return nil, &FetchError{Kind: KindStatus, URL: rawURL, Message: resp.Status}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	html := model.CutHTML(string(body), int(f.opts.maxBodySize))
	page := model.NewFetchedPage(rawURL, finalURL, pageTitle(html), html)

	f.opts.logger.Debug("page fetched",
		"url", rawURL,
		"final_url", page.FinalURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return page, nil
}

// readBody decodes the response body according to Content-Encoding and
// reads at most one byte past maxBodySize so that a cut can be detected.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.opts.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// pageTitle returns the document title, or "" when there is none.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
