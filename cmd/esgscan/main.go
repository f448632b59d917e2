// Package main provides the entry point for the esgscan CLI.
//
// esgscan discovers the sustainability pages of companies, harvests the
// links that look like ESG report PDFs and filters them by year.
//
// Usage:
//
//	esgscan scan "Acme Corp" 2022 2023
//	esgscan history "Acme Corp"
//
// See --help for all available options.
package main

// main is the entry point for esgscan.
func main() {
	Execute()
}
