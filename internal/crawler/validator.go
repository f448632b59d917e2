package crawler

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default validator thresholds.
const (
	// DefaultMinContentLength is the length in characters a page must exceed.
	DefaultMinContentLength = 500

	// DefaultErrorScanWindow is how many leading characters of the HTML are
	// scanned for error phrases. Error banners usually render near the top.
	DefaultErrorScanWindow = 2000
)

// ErrorPhrases mark a page as an error page when found in its title or in
// the leading part of its HTML.
var ErrorPhrases = []string{
	"404",
	"not found",
	"page not found",
	"error",
	"does not exist",
	"page unavailable",
	"access denied",
	"forbidden",
	"unauthorized",
	"server error",
	"internal server error",
	"service unavailable",
}

// anchorPattern matches anchor-opening markup such as `<a href=` or `<A class=`.
var anchorPattern = regexp.MustCompile(`(?i)<a\s`)

// RejectReason says why the validator turned a page down.
type RejectReason string

// Rejection reasons.
const (
	ReasonNone         RejectReason = ""
	ReasonErrorTitle   RejectReason = "error_title"
	ReasonErrorContent RejectReason = "error_content"
	ReasonTooShort     RejectReason = "too_short"
	ReasonNoAnchor     RejectReason = "no_anchor"
	ReasonNoBody       RejectReason = "no_body"
)

// Rejection is the validator's verdict. The zero value accepts the page.
// A rejection is a normal outcome, not an error.
type Rejection struct {
	Reason RejectReason

	// Phrase is the error phrase that matched, if any.
	Phrase string
}

// OK reports whether the page was accepted.
func (r Rejection) OK() bool {
	return r.Reason == ReasonNone
}

// String returns a log-friendly description.
func (r Rejection) String() string {
	switch {
	case r.OK():
		return "accepted"
	case r.Phrase != "":
		return string(r.Reason) + ": " + r.Phrase
	default:
		return string(r.Reason)
	}
}

// Validator separates real content pages from soft-404s, parking pages and
// stub responses using the title and HTML only.
type Validator struct {
	// MinContentLength is the length the HTML must exceed.
	MinContentLength int

	// ErrorScanWindow is how many leading characters are scanned for
	// error phrases.
	ErrorScanWindow int
}

// NewValidator returns a Validator with the default thresholds.
func NewValidator() *Validator {
	return &Validator{
		MinContentLength: DefaultMinContentLength,
		ErrorScanWindow:  DefaultErrorScanWindow,
	}
}

// Check validates a page and returns the first reason to reject it.
func (v *Validator) Check(title, html string) Rejection {
	titleLower := strings.ToLower(title)
	for _, phrase := range ErrorPhrases {
		if strings.Contains(titleLower, phrase) {
			return Rejection{Reason: ReasonErrorTitle, Phrase: phrase}
		}
	}

	head := strings.ToLower(prefixRunes(html, v.ErrorScanWindow))
	for _, phrase := range ErrorPhrases {
		if strings.Contains(head, phrase) {
			return Rejection{Reason: ReasonErrorContent, Phrase: phrase}
		}
	}

	if utf8.RuneCountInString(html) <= v.MinContentLength {
		return Rejection{Reason: ReasonTooShort}
	}

	if !anchorPattern.MatchString(html) {
		return Rejection{Reason: ReasonNoAnchor}
	}

	lower := strings.ToLower(html)
	if !strings.Contains(lower, "<body") || !strings.Contains(lower, "</body>") {
		return Rejection{Reason: ReasonNoBody}
	}

	return Rejection{}
}

// IsValid reports whether the page passes every check.
func (v *Validator) IsValid(title, html string) bool {
	return v.Check(title, html).OK()
}

// IsValidPage validates a page with the default thresholds.
func IsValidPage(title, html string) bool {
	return NewValidator().IsValid(title, html)
}

// prefixRunes returns the first n characters of s.
func prefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
