package model

import (
	"slices"
	"time"
)

// RunDiff compares the PDF links of two runs of the same company.
type RunDiff struct {
	Company  string    `json:"company"`
	OldRunID string    `json:"old_run_id"`
	NewRunID string    `json:"new_run_id"`
	OldAt    time.Time `json:"old_at"`
	NewAt    time.Time `json:"new_at"`

	// Added are links found by the newer run only.
	Added []string `json:"added"`

	// Removed are links found by the older run only.
	Removed []string `json:"removed"`

	// Unchanged counts links found by both runs.
	Unchanged int `json:"unchanged"`
}

// NewRunDiff computes the link difference between two runs.
// Added and Removed are sorted.
func NewRunDiff(company string, older, newer RunSnapshot) *RunDiff {
	oldSet := make(map[string]struct{}, len(older.Links))
	for _, l := range older.Links {
		oldSet[l] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newer.Links))
	for _, l := range newer.Links {
		newSet[l] = struct{}{}
	}

	d := &RunDiff{
		Company:  company,
		OldRunID: older.RunID,
		NewRunID: newer.RunID,
		OldAt:    older.StartedAt,
		NewAt:    newer.StartedAt,
		Added:    make([]string, 0),
		Removed:  make([]string, 0),
	}
	for l := range newSet {
		if _, ok := oldSet[l]; ok {
			d.Unchanged++
		} else {
			d.Added = append(d.Added, l)
		}
	}
	for l := range oldSet {
		if _, ok := newSet[l]; !ok {
			d.Removed = append(d.Removed, l)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	return d
}

// HasChanges reports whether any link was added or removed.
func (d *RunDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// RunSnapshot is the stored view of one company's run used for history.
type RunSnapshot struct {
	RunID     string    `json:"run_id"`
	Company   string    `json:"company"`
	Years     string    `json:"years"`
	Strategy  string    `json:"strategy"`
	StartedAt time.Time `json:"started_at"`
	Results   int       `json:"results"`
	Links     []string  `json:"links"`
}
