package candidate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nao1215/esgscan/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Host templates. %s is replaced by a name form.
const (
	templateWWW            = "www.%s.com"
	templateBare           = "%s.com"
	templateInvestors      = "investors.%s.com"
	templateSustainability = "sustainability.%s.com"
	templateESG            = "esg.%s.com"
)

// Suffixes are the paths appended to the www and bare templates, in order.
var Suffixes = []string{
	"/sustainability",
	"/esg",
	"/environmental",
	"/corporate-responsibility",
	"/responsibility",
	"/impact",
	"/about/sustainability",
	"/about/esg",
	"/investors/sustainability",
	"/investors/esg",
}

// Override maps a company name fragment to hand-picked URLs.
type Override struct {
	// Match is compared case-insensitively as a substring of the company name.
	Match string

	// URLs are emitted in order ahead of every generated URL.
	URLs []string
}

// builtinOverrides are checked in order; the first match wins.
var builtinOverrides = []Override{
	{
		Match: "boeing",
		URLs: []string{
			"https://www.boeing.com/sustainability",
			"https://www.boeing.com/about/sustainability",
			"https://www.boeing.com/company/sustainability",
		},
	},
	{
		Match: "apple",
		URLs: []string{
			"https://www.apple.com/environment",
			"https://www.apple.com/supplier-responsibility",
			"https://www.apple.com/accessibility",
		},
	},
	{
		Match: "microsoft",
		URLs: []string{
			"https://www.microsoft.com/en-us/corporate-responsibility",
			"https://www.microsoft.com/en-us/sustainability",
			"https://www.microsoft.com/en-us/accessibility",
		},
	},
}

// NameForms holds the normalized spellings of a company name.
type NameForms struct {
	// Clean is lower-case with every character outside [a-z0-9] removed.
	Clean string

	// Single is the lower-case words joined without a separator.
	Single string

	// Hyphen is the lower-case words joined with "-".
	Hyphen string

	// Underscore is the lower-case words joined with "_".
	// It is never used as a host label because DNS does not allow "_".
	Underscore string
}

// Normalize computes the name forms of a company name.
// Accented letters are folded to their ASCII base letter first.
func Normalize(company string) NameForms {
	lower := strings.ToLower(foldAccents(strings.TrimSpace(company)))
	words := strings.Fields(lower)

	var clean strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			clean.WriteRune(r)
		}
	}

	return NameForms{
		Clean:      clean.String(),
		Single:     strings.Join(words, ""),
		Hyphen:     strings.Join(words, "-"),
		Underscore: strings.Join(words, "_"),
	}
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithOverrides appends override groups after the built-in ones.
// Built-in groups keep their priority.
func WithOverrides(overrides ...Override) GeneratorOption {
	return func(g *Generator) {
		g.overrides = append(g.overrides, overrides...)
	}
}

// Generator builds candidate URLs from a company name. It is pure and
// safe for concurrent use once constructed.
type Generator struct {
	overrides []Override
}

// NewGenerator creates a Generator with the built-in override table.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		overrides: append([]Override(nil), builtinOverrides...),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the candidate URLs for a company in probing order:
// at most one override group, then the www/subdomain templates for the
// clean, single and hyphen forms, then the bare-domain templates for the
// same forms. Duplicates are kept. Names without a letter or digit are
// rejected since no host can be formed from them.
func (g *Generator) Generate(company string) ([]model.CandidateURL, error) {
	if strings.TrimSpace(company) == "" {
		return nil, ErrEmptyCompanyName
	}

	forms := Normalize(company)
	if forms.Clean == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoNameCharacters, company)
	}
	candidates := make([]model.CandidateURL, 0, 3*(len(Suffixes)*2+4)+3)

	if o, ok := g.matchOverride(company); ok {
		for _, u := range o.URLs {
			candidates = append(candidates, model.CandidateURL{URL: u, NameForm: model.NameFormOverride})
		}
	}

	type form struct {
		name  string
		label model.NameForm
	}
	hostForms := []form{
		{forms.Clean, model.NameFormClean},
		{forms.Single, model.NameFormSingle},
		{forms.Hyphen, model.NameFormHyphen},
	}

	for _, f := range hostForms {
		candidates = appendSuffixed(candidates, templateWWW, f.name, f.label)
		candidates = append(candidates,
			buildURL(templateInvestors, f.name, "/sustainability", f.label),
			buildURL(templateInvestors, f.name, "/esg", f.label),
			buildURL(templateSustainability, f.name, "", f.label),
			buildURL(templateESG, f.name, "", f.label),
		)
	}

	for _, f := range hostForms {
		candidates = appendSuffixed(candidates, templateBare, f.name, f.label)
	}

	return candidates, nil
}

func (g *Generator) matchOverride(company string) (Override, bool) {
	lower := strings.ToLower(company)
	for _, o := range g.overrides {
		if o.Match != "" && strings.Contains(lower, strings.ToLower(o.Match)) {
			return o, true
		}
	}
	return Override{}, false
}

func appendSuffixed(dst []model.CandidateURL, template, name string, label model.NameForm) []model.CandidateURL {
	for _, suffix := range Suffixes {
		dst = append(dst, buildURL(template, name, suffix, label))
	}
	return dst
}

func buildURL(template, name, suffix string, label model.NameForm) model.CandidateURL {
	return model.CandidateURL{
		URL:      "https://" + fmt.Sprintf(template, name) + suffix,
		NameForm: label,
		Template: template,
		Suffix:   suffix,
	}
}

// Generate runs the default Generator.
func Generate(company string) ([]model.CandidateURL, error) {
	return NewGenerator().Generate(company)
}
