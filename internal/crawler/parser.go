package crawler

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PageText is the readable content of an HTML page.
type PageText struct {
	// Title is the text of the <title> element.
	Title string

	// Text is the visible body text with whitespace collapsed.
	Text string

	// Tables is the number of <table> elements.
	Tables int
}

// skippedElements never contribute visible text.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

// ParseText walks an HTML document and collects its visible text.
// The HTML parser is lenient, so malformed markup yields partial text
// rather than an error.
func ParseText(content string) (*PageText, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	result := &PageText{}
	var body strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Title && result.Title == "":
				result.Title = collapseSpace(nodeText(n))
				return
			case skippedElements[n.DataAtom]:
				return
			case n.DataAtom == atom.Table:
				result.Tables++
			}
		}

		if n.Type == html.TextNode {
			body.WriteString(n.Data)
			body.WriteByte(' ')
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Text = collapseSpace(body.String())
	return result, nil
}

// nodeText returns the concatenated text of n's subtree, skipping scripts.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
