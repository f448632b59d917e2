package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/esgscan/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "esgscan.db"

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores completed runs per company together with their results
// and harvested PDF links.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan with --save-db first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per company and run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT NOT NULL,
		company TEXT NOT NULL,
		years TEXT NOT NULL,
		strategy TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		timed_out INTEGER NOT NULL DEFAULT 0,
		accepted INTEGER NOT NULL DEFAULT 0,
		rejected INTEGER NOT NULL DEFAULT 0,
		fetch_failed INTEGER NOT NULL DEFAULT 0,
		links_before_filter INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, company)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company, started_at);

	-- Scrape results of a company run
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		company TEXT NOT NULL,
		source_title TEXT,
		source_url TEXT NOT NULL,
		parent_url TEXT,
		page_hash TEXT,
		scraped_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id, company);

	-- Harvested links that survived the year filter
	CREATE TABLE IF NOT EXISTS pdf_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		result_id INTEGER NOT NULL REFERENCES results(id),
		run_id TEXT NOT NULL,
		company TEXT NOT NULL,
		url TEXT NOT NULL,
		text TEXT,
		signals TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_links_run ON pdf_links(run_id, company);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores every company of the run in a single transaction.
// Saving the same run twice replaces the earlier rows.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.RunReport) error {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"pdf_links", "results", "runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", run.ID); err != nil {
			return fmt.Errorf("failed to clear previous run rows: %w", err)
		}
	}

	for _, company := range run.Companies {
		if err := saveCompany(ctx, tx, run, company); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func saveCompany(ctx context.Context, tx *sql.Tx, run *model.RunReport, c *model.CompanyReport) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, company, years, strategy, started_at, finished_at, timed_out,
		accepted, rejected, fetch_failed, links_before_filter)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		c.Company,
		c.Years.String(),
		c.Strategy,
		formatTime(c.StartedAt),
		formatTime(c.FinishedAt),
		c.TimedOut,
		c.CountOutcome(model.OutcomeAccepted),
		c.CountOutcome(model.OutcomeRejected),
		c.CountOutcome(model.OutcomeFetchFailed),
		c.LinksBeforeFilter,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run for %s: %w", c.Company, err)
	}

	for _, res := range c.Results {
		result, err := tx.ExecContext(ctx, `
		INSERT INTO results (run_id, company, source_title, source_url, parent_url, page_hash, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			c.Company,
			res.SourceTitle,
			res.SourceURL,
			res.ParentURL,
			res.PageHash,
			formatTime(res.ScrapedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert result %s: %w", res.SourceURL, err)
		}
		resultID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read result id: %w", err)
		}

		for _, link := range res.PDFLinks {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO pdf_links (result_id, run_id, company, url, text, signals)
			VALUES (?, ?, ?, ?, ?, ?)
			`,
				resultID,
				run.ID,
				c.Company,
				link.URL,
				link.DisplayText(),
				link.SignalString(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert link %s: %w", link.URL, err)
			}
		}
	}
	return nil
}

// ListCompanies returns every company with at least one stored run.
func (hdb *HistoryDB) ListCompanies(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT company FROM runs ORDER BY company`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []string
	for rows.Next() {
		var company string
		if err := rows.Scan(&company); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// ListRuns returns the stored runs of a company, newest first.
func (hdb *HistoryDB) ListRuns(ctx context.Context, company string) ([]model.RunSnapshot, error) {
	return hdb.GetLatestRuns(ctx, company, -1)
}

// GetLatestRuns returns at most n runs of a company, newest first.
// A negative n returns every run.
func (hdb *HistoryDB) GetLatestRuns(ctx context.Context, company string, n int) ([]model.RunSnapshot, error) {
	return hdb.querySnapshots(ctx, `
	SELECT run_id, company, years, strategy, started_at
	FROM runs
	WHERE company = ?
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`, company, n)
}

// GetRun returns one snapshot per company of the run, in company order.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) ([]model.RunSnapshot, error) {
	snaps, err := hdb.querySnapshots(ctx, `
	SELECT run_id, company, years, strategy, started_at
	FROM runs
	WHERE run_id = ?
	ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return snaps, nil
}

func (hdb *HistoryDB) querySnapshots(ctx context.Context, query string, args ...any) ([]model.RunSnapshot, error) {
	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var snaps []model.RunSnapshot
	for rows.Next() {
		var snap model.RunSnapshot
		var startedAt string
		if err := rows.Scan(&snap.RunID, &snap.Company, &snap.Years, &snap.Strategy, &startedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		snap.StartedAt = parseTimestamp(startedAt)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	// The connection pool holds a single connection, so rows must be
	// closed before the per-run queries below.
	_ = rows.Close()

	for i := range snaps {
		if err := hdb.fillSnapshot(ctx, &snaps[i]); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

// fillSnapshot loads the result count and link URLs of one company run.
func (hdb *HistoryDB) fillSnapshot(ctx context.Context, snap *model.RunSnapshot) error {
	err := hdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM results WHERE run_id = ? AND company = ?`,
		snap.RunID, snap.Company,
	).Scan(&snap.Results)
	if err != nil {
		return fmt.Errorf("failed to count results: %w", err)
	}

	rows, err := hdb.db.QueryContext(ctx,
		`SELECT url FROM pdf_links WHERE run_id = ? AND company = ? ORDER BY id`,
		snap.RunID, snap.Company,
	)
	if err != nil {
		return fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	snap.Links = make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("failed to scan link: %w", err)
		}
		snap.Links = append(snap.Links, url)
	}
	return rows.Err()
}

// LatestDiff compares the two most recent runs of a company.
// It returns nil when fewer than two runs are stored.
func (hdb *HistoryDB) LatestDiff(ctx context.Context, company string) (*model.RunDiff, error) {
	runs, err := hdb.GetLatestRuns(ctx, company, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, nil
	}
	return model.NewRunDiff(company, runs[1], runs[0]), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats accepted when reading.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
