package crawler

import (
	"strings"

	"github.com/nao1215/esgscan/internal/model"
)

// DefaultMaxSubpages bounds how many subpages are followed per page.
const DefaultMaxSubpages = 3

// subpageWords select links that usually lead to report listing pages.
var subpageWords = []string{"reporting", "disclosure", "download", "reports"}

// SelectSubpages returns the first limit links whose text mentions a
// report listing, in harvest order.
func SelectSubpages(links []model.LinkCandidate, limit int) []model.LinkCandidate {
	if limit <= 0 {
		return []model.LinkCandidate{}
	}
	selected := make([]model.LinkCandidate, 0, min(limit, len(links)))

	for _, link := range links {
		text := strings.ToLower(link.Text)
		for _, w := range subpageWords {
			if strings.Contains(text, w) {
				selected = append(selected, link)
				break
			}
		}
		if len(selected) == limit {
			break
		}
	}
	return selected
}
