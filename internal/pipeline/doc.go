// Package pipeline probes companies for ESG report PDFs.
//
// Each company is processed by a Pipeline of steps sharing one
// model.CompanyReport: candidate sourcing, probing (fetch, validate,
// harvest, follow subpages), year filtering and, optionally, document
// processing. The Orchestrator runs the pipeline for every company of a
// run in order and collects the reports into a model.RunReport.
//
// Everything runs sequentially. A failing candidate is recorded as an
// Attempt and the probe moves on; only context cancellation stops a run.
package pipeline
