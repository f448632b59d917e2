package model

// NameForm identifies how a company name was turned into a host label.
type NameForm string

const (
	// NameFormOverride marks a hand-curated URL rather than a generated one.
	NameFormOverride NameForm = "override"

	// NameFormClean is the lower-cased name with every non-alphanumeric removed.
	NameFormClean NameForm = "clean"

	// NameFormSingle is the lower-cased words joined without a separator.
	NameFormSingle NameForm = "single"

	// NameFormHyphen is the lower-cased words joined with "-".
	NameFormHyphen NameForm = "hyphen"

	// NameFormUnderscore is the lower-cased words joined with "_".
	NameFormUnderscore NameForm = "underscore"

	// NameFormSearch marks a URL that came from a search engine result.
	NameFormSearch NameForm = "search"
)

// CandidateURL is a URL hypothesized to host a company's ESG content.
// The position of a candidate in its slice is its probing priority.
type CandidateURL struct {
	// URL is the absolute URL to fetch.
	URL string `json:"url"`

	// NameForm is the company name form the host was built from.
	NameForm NameForm `json:"name_form"`

	// Template is the host template, e.g. "www.%s.com".
	// Empty for overrides and search results.
	Template string `json:"template,omitempty"`

	// Suffix is the path suffix appended to the host, if any.
	Suffix string `json:"suffix,omitempty"`
}

// URLs returns the plain URL strings of the candidates in order.
func URLs(candidates []CandidateURL) []string {
	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.URL
	}
	return urls
}
