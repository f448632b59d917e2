package candidate

import "errors"

var (
	// ErrEmptyCompanyName is returned when the company name is empty or
	// contains only whitespace.
	ErrEmptyCompanyName = errors.New("company name is empty")

	// ErrNoNameCharacters is returned when a company name has no letter or
	// digit to build a host name from.
	ErrNoNameCharacters = errors.New("company name has no letters or digits")

	// ErrNoSearchBase is returned when a search strategy has no base URL.
	ErrNoSearchBase = errors.New("search engine base URL is empty")
)
