// Package candidate turns a company name into an ordered list of URLs that
// may host the company's ESG or sustainability pages.
//
// Two sourcing strategies share the Strategy interface. DirectURLGuess
// builds URLs from name forms, domain templates and path suffixes and needs
// no network access. SearchEngineQuery asks a search engine and keeps
// ESG-related result links.
//
// The position of a candidate in the returned slice is its probing priority.
package candidate
