// Package document downloads harvested ESG PDFs, extracts their text and
// splits it into overlapping chunks tagged with ESG keywords. The chunks
// are written as JSON lines next to a metadata file so they can be loaded
// into a search index.
package document
