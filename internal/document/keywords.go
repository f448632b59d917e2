package document

import "strings"

// Keyword categories.
const (
	CategoryEnvironmental = "environmental"
	CategorySocial        = "social"
	CategoryGovernance    = "governance"
)

// Keywords maps category -> subcategory -> matched terms.
// Every category is present; a subcategory appears only when at least one
// of its terms matched.
type Keywords map[string]map[string][]string

// keywordTerms lists the terms searched for, per category and subcategory.
var keywordTerms = map[string]map[string][]string{
	CategoryEnvironmental: {
		"carbon":       {"carbon", "emissions", "co2", "greenhouse gas", "climate change", "carbon footprint"},
		"energy":       {"energy", "renewable", "solar", "wind", "hydroelectric", "energy efficiency"},
		"waste":        {"waste", "recycling", "circular economy", "zero waste", "landfill"},
		"water":        {"water", "water usage", "water conservation", "water footprint"},
		"biodiversity": {"biodiversity", "ecosystem", "conservation", "wildlife", "habitat"},
	},
	CategorySocial: {
		"diversity":    {"diversity", "inclusion", "equity", "representation", "minority"},
		"workforce":    {"employee", "workforce", "labor", "human rights", "working conditions"},
		"community":    {"community", "philanthropy", "charitable", "social impact", "local"},
		"safety":       {"safety", "health", "occupational", "workplace safety", "wellness"},
		"supply_chain": {"supply chain", "supplier", "vendor", "procurement", "sourcing"},
	},
	CategoryGovernance: {
		"board":        {"board", "director", "governance", "leadership", "executive"},
		"ethics":       {"ethics", "compliance", "corruption", "bribery", "integrity"},
		"transparency": {"transparency", "disclosure", "reporting", "accountability"},
		"risk":         {"risk", "risk management", "compliance risk", "operational risk"},
		"stakeholder":  {"stakeholder", "shareholder", "investor", "engagement"},
	},
}

// ExtractKeywords returns the ESG terms contained in text.
// Matching is a case-insensitive substring search.
func ExtractKeywords(text string) Keywords {
	lower := strings.ToLower(text)

	found := Keywords{
		CategoryEnvironmental: {},
		CategorySocial:        {},
		CategoryGovernance:    {},
	}
	for category, subcategories := range keywordTerms {
		for subcategory, terms := range subcategories {
			var matches []string
			for _, term := range terms {
				if strings.Contains(lower, term) {
					matches = append(matches, term)
				}
			}
			if len(matches) > 0 {
				found[category][subcategory] = matches
			}
		}
	}
	return found
}

// Count returns the number of matched terms across all categories.
func (k Keywords) Count() int {
	n := 0
	for _, subcategories := range k {
		for _, terms := range subcategories {
			n += len(terms)
		}
	}
	return n
}
