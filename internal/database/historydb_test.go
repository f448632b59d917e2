package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/esgscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testRun builds a run with one result per link for the given company.
func testRun(id, company string, startedAt time.Time, links ...string) *model.RunReport {
	run := model.NewRunReport(id, model.YearSet{"2022", "2023"}, "direct")
	run.StartedAt = startedAt

	c := model.NewCompanyReport(company, run.Years)
	c.Strategy = "direct"
	c.StartedAt = startedAt
	c.FinishedAt = startedAt.Add(time.Minute)
	c.AddAttempt(model.Attempt{URL: "https://www.acmecorp.com/esg", Outcome: model.OutcomeRejected})
	c.AddAttempt(model.Attempt{URL: "https://www.acmecorp.com/sustainability", Outcome: model.OutcomeAccepted})

	pdfs := make([]model.LinkCandidate, 0, len(links))
	for _, l := range links {
		pdfs = append(pdfs, model.LinkCandidate{URL: l, Text: "Report", IsDirectPDF: true})
	}
	c.AddResult(model.ScrapeResult{
		Company:     company,
		SourceTitle: "Sustainability",
		SourceURL:   "https://www.acmecorp.com/sustainability",
		PDFLinks:    pdfs,
		ScrapedAt:   startedAt,
	})
	c.LinksBeforeFilter = len(links) + 1
	run.Companies = append(run.Companies, c)
	return run
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")

		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("expected error to contain %q, got %q", "database not found", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		_ = db2.Close()
	})
}

// TestDefaultOptions tests the default option values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

// TestSaveAndGetRun tests storing and reading back a run.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	t.Run("round trips company snapshot", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

		run := testRun("run-1", "Acme Corp", started,
			"https://www.acmecorp.com/esg-2022.pdf",
			"https://www.acmecorp.com/esg-2023.pdf",
		)
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		snaps, err := db.GetRun(ctx, "run-1")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if len(snaps) != 1 {
			t.Fatalf("expected 1 snapshot, got %d", len(snaps))
		}

		snap := snaps[0]
		if snap.Company != "Acme Corp" {
			t.Errorf("expected company Acme Corp, got %q", snap.Company)
		}
		if snap.Years != "2022, 2023" {
			t.Errorf("expected years %q, got %q", "2022, 2023", snap.Years)
		}
		if snap.Strategy != "direct" {
			t.Errorf("expected strategy direct, got %q", snap.Strategy)
		}
		if !snap.StartedAt.Equal(started) {
			t.Errorf("expected started at %v, got %v", started, snap.StartedAt)
		}
		if snap.Results != 1 {
			t.Errorf("expected 1 result, got %d", snap.Results)
		}
		if len(snap.Links) != 2 || snap.Links[0] != "https://www.acmecorp.com/esg-2022.pdf" {
			t.Errorf("unexpected links %v", snap.Links)
		}
	})

	t.Run("saving the same run twice replaces it", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

		if err := db.SaveRun(ctx, testRun("run-1", "Acme Corp", started, "https://x.com/a.pdf")); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if err := db.SaveRun(ctx, testRun("run-1", "Acme Corp", started, "https://x.com/b.pdf")); err != nil {
			t.Fatalf("failed to save run again: %v", err)
		}

		snaps, err := db.GetRun(ctx, "run-1")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if len(snaps) != 1 || len(snaps[0].Links) != 1 || snaps[0].Links[0] != "https://x.com/b.pdf" {
			t.Errorf("expected only the replacement links, got %+v", snaps)
		}
	})

	t.Run("unknown run returns ErrRunNotFound", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		_, err := db.GetRun(context.Background(), "missing")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("company without results has no links", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		run := model.NewRunReport("empty", model.YearSet{"2023"}, "search")
		run.Companies = append(run.Companies, model.NewCompanyReport("Globex", run.Years))
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		snaps, err := db.GetRun(ctx, "empty")
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if snaps[0].Results != 0 || len(snaps[0].Links) != 0 {
			t.Errorf("expected empty snapshot, got %+v", snaps[0])
		}
	})
}

// TestRunHistory tests listing and diffing stored runs.
func TestRunHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	runs := []*model.RunReport{
		testRun("r1", "Acme Corp", base, "https://x.com/2021.pdf"),
		testRun("r2", "Acme Corp", base.Add(24*time.Hour), "https://x.com/2021.pdf", "https://x.com/2022.pdf"),
		testRun("r3", "Acme Corp", base.Add(48*time.Hour), "https://x.com/2022.pdf", "https://x.com/2023.pdf"),
		testRun("r4", "Globex", base.Add(time.Hour), "https://globex.com/2023.pdf"),
	}
	for _, run := range runs {
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run %s: %v", run.ID, err)
		}
	}

	t.Run("lists companies alphabetically", func(t *testing.T) {
		companies, err := db.ListCompanies(ctx)
		if err != nil {
			t.Fatalf("failed to list companies: %v", err)
		}
		if len(companies) != 2 || companies[0] != "Acme Corp" || companies[1] != "Globex" {
			t.Errorf("unexpected companies %v", companies)
		}
	})

	t.Run("lists runs newest first", func(t *testing.T) {
		snaps, err := db.ListRuns(ctx, "Acme Corp")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(snaps) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(snaps))
		}
		if snaps[0].RunID != "r3" || snaps[2].RunID != "r1" {
			t.Errorf("unexpected order: %s, %s, %s", snaps[0].RunID, snaps[1].RunID, snaps[2].RunID)
		}
	})

	t.Run("limits latest runs", func(t *testing.T) {
		snaps, err := db.GetLatestRuns(ctx, "Acme Corp", 2)
		if err != nil {
			t.Fatalf("failed to get latest runs: %v", err)
		}
		if len(snaps) != 2 || snaps[0].RunID != "r3" || snaps[1].RunID != "r2" {
			t.Errorf("unexpected latest runs %+v", snaps)
		}
	})

	t.Run("diffs the two latest runs", func(t *testing.T) {
		diff, err := db.LatestDiff(ctx, "Acme Corp")
		if err != nil {
			t.Fatalf("failed to diff: %v", err)
		}
		if diff == nil {
			t.Fatal("expected a diff")
		}
		if diff.OldRunID != "r2" || diff.NewRunID != "r3" {
			t.Errorf("expected r2 -> r3, got %s -> %s", diff.OldRunID, diff.NewRunID)
		}
		if len(diff.Added) != 1 || diff.Added[0] != "https://x.com/2023.pdf" {
			t.Errorf("unexpected added links %v", diff.Added)
		}
		if len(diff.Removed) != 1 || diff.Removed[0] != "https://x.com/2021.pdf" {
			t.Errorf("unexpected removed links %v", diff.Removed)
		}
		if diff.Unchanged != 1 {
			t.Errorf("expected 1 unchanged link, got %d", diff.Unchanged)
		}
	})

	t.Run("single run has no diff", func(t *testing.T) {
		diff, err := db.LatestDiff(ctx, "Globex")
		if err != nil {
			t.Fatalf("failed to diff: %v", err)
		}
		if diff != nil {
			t.Errorf("expected nil diff, got %+v", diff)
		}
	})
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"stored layout", "2024-05-01T10:00:00.000000000Z", false},
		{"sqlite datetime", "2024-05-01 10:00:00", false},
		{"garbage", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); got.IsZero() != tt.zero {
				t.Errorf("expected zero=%v for %q, got %v", tt.zero, tt.input, got)
			}
		})
	}
}
