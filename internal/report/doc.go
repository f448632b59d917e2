// Package report renders run results.
//
// Writers implement the Writer interface:
//   - SimpleWriter: per-result summary for the terminal
//   - JSONWriter: the full run as JSON
//   - MarkdownWriter: tables for sharing
//
// WriteOutputFile writes the esg-pdf-urls.json artifact itself.
package report
