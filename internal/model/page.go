package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MaxHTMLSize is the maximum amount of rendered HTML kept for a page.
// Larger documents are truncated before validation and harvesting.
const MaxHTMLSize = 5 * 1024 * 1024 // 5 MB

// FetchedPage is the outcome of one successful page fetch.
// It is produced per attempt and never persisted.
type FetchedPage struct {
	// RequestedURL is the URL that was asked for.
	RequestedURL string `json:"requested_url"`

	// FinalURL is the URL after redirects and client-side navigation.
	// Relative links on the page are resolved against it.
	FinalURL string `json:"final_url"`

	// Title is the document title as the browser reports it.
	Title string `json:"title"`

	// HTML is the full rendered markup, after scripts have run.
	HTML string `json:"-"`

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`
}

// NewFetchedPage creates a FetchedPage and enforces MaxHTMLSize.
// An empty finalURL falls back to the requested URL.
func NewFetchedPage(requestedURL, finalURL, title, html string) *FetchedPage {
	if finalURL == "" {
		finalURL = requestedURL
	}
	p := &FetchedPage{
		RequestedURL: requestedURL,
		FinalURL:     finalURL,
		Title:        strings.TrimSpace(title),
		HTML:         html,
		FetchedAt:    time.Now(),
	}
	p.TruncateHTML()
	return p
}

// BaseURL returns the URL that relative links should be resolved against.
func (p *FetchedPage) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.RequestedURL
}

// Redirected reports whether the browser ended up on a different URL.
func (p *FetchedPage) Redirected() bool {
	return p.FinalURL != "" && p.FinalURL != p.RequestedURL
}

// ContentHash returns the SHA-256 of the HTML as a hex string.
// Empty pages produce an empty hash.
func (p *FetchedPage) ContentHash() string {
	if p.HTML == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.HTML))
	return hex.EncodeToString(sum[:])
}

// TruncateHTML ensures the HTML doesn't exceed MaxHTMLSize.
func (p *FetchedPage) TruncateHTML() {
	p.HTML = CutHTML(p.HTML, MaxHTMLSize)
}

// closingTags end a document cut by CutHTML.
const closingTags = "</body></html>"

// CutHTML shortens html to at most limit bytes. A cut document drops any
// partial tag or rune at the cut and ends with closingTags, so a page that
// had a body still has its closing body tag.
func CutHTML(html string, limit int) string {
	if len(html) <= limit {
		return html
	}
	if limit < len(closingTags) {
		return html[:max(limit, 0)]
	}

	cut := html[:limit-len(closingTags)]
	if lt := strings.LastIndexByte(cut, '<'); lt > strings.LastIndexByte(cut, '>') {
		cut = cut[:lt]
	}
	return strings.ToValidUTF8(cut, "") + closingTags
}
