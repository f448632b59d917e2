package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/esgscan/internal/config"
	"github.com/nao1215/esgscan/internal/database"
	"github.com/nao1215/esgscan/internal/model"
	"github.com/nao1215/esgscan/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// It reads runs saved with "esgscan scan --save-db".
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [company]",
		Short: "Show saved runs and compare the latest two",
		Long: `History reads the runs saved with --save-db.

For a company it shows which PDF links appeared and which vanished between
the two most recent runs.

Examples:
  # Compare the latest two runs of a company
  esgscan history "Acme Corp"

  # List all runs of a company
  esgscan history --list "Acme Corp"

  # List every company in the database
  esgscan history --list-companies

  # Output the comparison as Markdown
  esgscan history --markdown "Acme Corp"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List saved runs for the company")
	cmd.Flags().BoolP("list-companies", "L", false,
		"List every company in the database")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the comparison in Markdown format")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	company       string
	list          bool
	listCompanies bool
	format        string
	dbDir         string
}

// parseHistoryOptions validates flags before the database is opened.
func parseHistoryOptions(cmd *cobra.Command, args []string) (historyOptions, error) {
	var opts historyOptions
	var err error

	if opts.list, err = cmd.Flags().GetBool("list"); err != nil {
		return opts, err
	}
	if opts.listCompanies, err = cmd.Flags().GetBool("list-companies"); err != nil {
		return opts, err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return opts, err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return opts, err
	}
	if jsonOut && markdownOut {
		return opts, config.ErrConflictingReportFormats
	}
	switch {
	case jsonOut:
		opts.format = report.FormatJSON
	case markdownOut:
		opts.format = report.FormatMarkdown
	default:
		opts.format = report.FormatSimple
	}

	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return opts, err
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}

	if len(args) > 0 {
		opts.company = args[0]
	}
	if !opts.listCompanies && opts.company == "" {
		return opts, errors.New("company name is required (use --list-companies to see saved companies)")
	}
	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryOptions(cmd, args)
	if err != nil {
		return err
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, opts, cmd.OutOrStdout())
}

func runHistory(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	switch {
	case opts.listCompanies:
		companies, err := db.ListCompanies(ctx)
		if err != nil {
			return err
		}
		return listCompanies(out, companies, opts.format == report.FormatJSON)

	case opts.list:
		runs, err := db.ListRuns(ctx, opts.company)
		if err != nil {
			return err
		}
		return listRuns(out, opts.company, runs, opts.format == report.FormatJSON)

	default:
		diff, err := db.LatestDiff(ctx, opts.company)
		if err != nil {
			return err
		}
		if diff == nil {
			fmt.Fprintf(out, "Fewer than two saved runs for %s; nothing to compare.\n", opts.company)
			return nil
		}
		_, err = report.NewWriter(opts.format, out, getVersion()).WriteDiff(diff)
		return err
	}
}

func listCompanies(out io.Writer, companies []string, asJSON bool) error {
	if asJSON {
		if companies == nil {
			companies = []string{}
		}
		return writeJSON(out, companies)
	}
	if len(companies) == 0 {
		fmt.Fprintln(out, "No saved runs.")
		return nil
	}
	for _, c := range companies {
		fmt.Fprintln(out, c)
	}
	return nil
}

func listRuns(out io.Writer, company string, runs []model.RunSnapshot, asJSON bool) error {
	if asJSON {
		if runs == nil {
			runs = []model.RunSnapshot{}
		}
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No saved runs for %s.\n", company)
		return nil
	}

	fmt.Fprintf(out, "Runs for %s (newest first)\n\n", company)
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  years %s  %s  %d results, %d links\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.RunID,
			r.Years,
			r.Strategy,
			r.Results,
			len(r.Links),
		)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
