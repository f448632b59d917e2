// Package model defines the core data structures used throughout esgscan.
//
// This package contains the following main types:
//   - CandidateURL: A guessed URL together with the name form it came from
//   - FetchedPage: The rendered title, HTML and final URL of one fetch
//   - LinkCandidate: An anchor element scored as a possible ESG report PDF
//   - ScrapeResult: The PDF-like links harvested from one validated page
//   - CompanyReport: Everything collected while probing one company
//   - RunReport: The ordered company reports of one esgscan run
//
// The models are shared by the crawler, pipeline, report and database
// packages, so they live in their own package to avoid import cycles.
// All of them serialize to JSON for report output and database storage.
package model
