package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/esgscan/internal/model"
)

// Keyword sets for the link signals. All comparisons are on lower-cased values.
var (
	downloadWords = []string{"download", "get", "view", "open", "access"}
	reportWords   = []string{
		"report", "sustainability", "esg", "performance", "summary",
		"disclosure", "statement", "document", "publication",
	}
	buttonWords = []string{"btn", "button"}
)

// shortTextLength is the text length below which an anchor counts as a button.
const shortTextLength = 20

// Harvest returns the anchors of a page that might lead to a PDF report,
// in document order. Relative hrefs are resolved against the page's
// final URL.
//
// The inclusion rule favours recall: false positives are expected and are
// thinned out later by the year filter.
func Harvest(page *model.FetchedPage) ([]model.LinkCandidate, error) {
	base, err := url.Parse(page.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", page.BaseURL(), err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", page.BaseURL(), err)
	}

	links := make([]model.LinkCandidate, 0)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}

		title, _ := sel.Attr("title")
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")

		link, ok := classifyLink(resolved, strings.TrimSpace(sel.Text()), title, class, id)
		if ok {
			links = append(links, link)
		}
	})

	return links, nil
}

// classifyLink computes the four link signals and the inclusion rule for one anchor.
func classifyLink(href, text, title, class, id string) (model.LinkCandidate, bool) {
	hrefL := strings.ToLower(href)
	textL := strings.ToLower(text)
	titleL := strings.ToLower(title)
	classL := strings.ToLower(class)
	idL := strings.ToLower(id)

	attrs := []string{textL, titleL, classL, idL}
	isButton := anyContains([]string{classL, idL}, buttonWords) ||
		utf8.RuneCountInString(textL) < shortTextLength

	link := model.LinkCandidate{
		URL:            href,
		Text:           text,
		Title:          title,
		Class:          class,
		ID:             id,
		IsDirectPDF:    strings.Contains(hrefL, ".pdf"),
		IsDownloadLink: anyContains(attrs, downloadWords),
		IsReportLink:   anyContains(attrs, reportWords),
		IsButtonLink:   isButton,
	}

	textPDF := strings.Contains(textL, "pdf")
	hrefPDF := strings.Contains(hrefL, "pdf")
	textDownload := strings.Contains(textL, "download")

	mightBePDF := link.IsDirectPDF ||
		(link.IsDownloadLink && (textPDF || hrefPDF)) ||
		(link.IsReportLink && (textPDF || hrefPDF || textDownload)) ||
		(link.IsButtonLink && (textPDF || hrefPDF || textDownload)) ||
		anyContains([]string{textL, titleL, classL, idL, hrefL}, []string{"pdf"})

	return link, mightBePDF
}

// resolveURL resolves href against base. Script, mail, phone, data and
// bare fragment links resolve to "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func anyContains(values, words []string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, w := range words {
			if strings.Contains(v, w) {
				return true
			}
		}
	}
	return false
}
