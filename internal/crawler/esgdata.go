package crawler

import (
	"strings"

	"github.com/nao1215/esgscan/internal/model"
)

// topic is one keyword-presence check on a page's visible text.
type topic struct {
	key   string
	terms []string
	note  string
}

var (
	environmentalTopics = []topic{
		{"carbonFootprint", []string{"carbon", "emissions"}, "Found carbon-related data"},
		{"energy", []string{"energy", "renewable"}, "Found energy-related data"},
		{"waste", []string{"waste", "recycling"}, "Found waste-related data"},
		{"water", []string{"water"}, "Found water-related data"},
	}
	socialTopics = []topic{
		{"diversity", []string{"diversity", "inclusion"}, "Found diversity-related data"},
		{"workforce", []string{"employee", "workforce"}, "Found workforce-related data"},
		{"community", []string{"community", "philanthropy"}, "Found community-related data"},
		{"safety", []string{"safety", "health"}, "Found safety-related data"},
	}
	governanceTopics = []topic{
		{"board", []string{"board", "director"}, "Found board-related data"},
		{"ethics", []string{"ethics", "compliance"}, "Found ethics-related data"},
		{"transparency", []string{"transparency", "disclosure"}, "Found transparency-related data"},
	}
)

// ExtractESGData records which ESG topics a page's visible text mentions.
// Only keyword presence is detected; no metric values are extracted.
func ExtractESGData(page *model.FetchedPage, company string) model.ExtractedData {
	data := model.NewExtractedData()
	data.General = model.GeneralInfo{
		Title:   page.Title,
		Company: company,
		URL:     page.BaseURL(),
	}

	text, err := ParseText(page.HTML)
	if err != nil {
		return data
	}
	data.General.Tables = text.Tables
	if data.General.Title == "" {
		data.General.Title = text.Title
	}

	lower := strings.ToLower(text.Text)
	matchTopics(lower, environmentalTopics, data.Environmental)
	matchTopics(lower, socialTopics, data.Social)
	matchTopics(lower, governanceTopics, data.Governance)

	return data
}

func matchTopics(text string, topics []topic, into map[string]string) {
	for _, t := range topics {
		for _, term := range t.terms {
			if strings.Contains(text, term) {
				into[t.key] = t.note
				break
			}
		}
	}
}
