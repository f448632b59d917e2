package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/nao1215/esgscan/internal/candidate"
	"github.com/nao1215/esgscan/internal/config"
	"github.com/nao1215/esgscan/internal/crawler"
	"github.com/nao1215/esgscan/internal/database"
	"github.com/nao1215/esgscan/internal/document"
	"github.com/nao1215/esgscan/internal/fetch"
	applog "github.com/nao1215/esgscan/internal/log"
	"github.com/nao1215/esgscan/internal/model"
	"github.com/nao1215/esgscan/internal/pipeline"
	"github.com/nao1215/esgscan/internal/report"
	"github.com/nao1215/esgscan/internal/yearfilter"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [company] [startYear] [stopYear]",
		Short: "Find ESG report PDFs for a company",
		Long: `Scan probes likely sustainability pages of a company, harvests links that
look like report PDFs and keeps the ones mentioning the requested years.

Without a start year the current year is used. A start year alone selects
that year, both years select the inclusive range. The harvested links are
written to esg-pdf-urls.json even when nothing was found.

Examples:
  # Current year for the default company
  esgscan scan

  # A single year
  esgscan scan "Acme Corp" 2023

  # A range of years, discovering pages through a search engine
  esgscan scan --strategy search "Acme Corp" 2021 2023

  # Plain HTTP fetching without Chrome
  esgscan scan --no-browser "Acme Corp"

  # Download and chunk the PDFs that were found
  esgscan scan --process-pdfs "Acme Corp" 2023

Configuration file (.esgscan) example:
  companies:
    - Acme Corp
  overrides:
    - match: acme
      urls:
        - https://www.acmecorp.com/sustainability
  defaults:
    company_delay: 5s`,
		Args: cobra.MaximumNArgs(3),
		RunE: runScanCmd,
	}

	// Page sourcing flags
	cmd.Flags().StringP("strategy", "s", config.StrategyDirect,
		"Page sourcing strategy (direct or search)")
	cmd.Flags().String("engine", config.EngineDuckDuckGo,
		"Search engine used by the search strategy")
	cmd.Flags().Int("max-subpages", config.DefaultMaxSubpages,
		"Subpages followed per accepted page")

	// Fetching flags
	cmd.Flags().Bool("no-browser", false,
		"Fetch plain HTML over HTTP instead of rendering pages in Chrome")
	cmd.Flags().String("chrome-path", "",
		"Path to the Chrome binary (default: found automatically)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for pages and PDFs (host:port)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout,
		"Timeout for each page fetch")
	cmd.Flags().Duration("delay", config.DefaultCompanyDelay,
		"Wait between two companies")
	cmd.Flags().Duration("interval", config.DefaultRequestInterval,
		"Minimum interval between two page fetches (0 disables)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Path of the harvested links JSON file")
	cmd.Flags().BoolP("json", "j", false,
		"Print a JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print a Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report-file", "r", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().Bool("save-db", false,
		"Save the run to the history database")

	// Document flags
	cmd.Flags().Bool("process-pdfs", false,
		"Download, extract and chunk the harvested PDFs")
	cmd.Flags().Int("max-pdfs", config.DefaultMaxPDFs,
		"Maximum PDFs processed per company")
	cmd.Flags().Int("workers", config.DefaultDocumentWorkers,
		"Concurrent PDF downloads")
	cmd.Flags().String("download-dir", "",
		"Directory for downloaded PDFs and chunk files (default: XDG cache)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .esgscan in current or home directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	years, err := yearfilter.NewYearSet(cfg.StartYear, cfg.StopYear, time.Now())
	if err != nil {
		return fmt.Errorf("invalid years: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, writing partial results")
			cancel()
		case <-ctx.Done():
		}
	}()

	f, closeFetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	return runScan(ctx, cfg, years, f, cmd.OutOrStdout(), logger)
}

// getFlagBool reads a boolean flag from the command or the root's
// persistent flags.
func getFlagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from defaults, the config file, the
// environment and the command flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getFlagBool(cmd, "verbose")
	cfg.LogJSON = getFlagBool(cmd, "log-json")

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := applyScanFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := applyScanArgs(cfg, args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyScanFlags copies flags the user set explicitly, so that unset flags
// keep the config file and environment values.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"strategy":    &cfg.Strategy,
		"engine":      &cfg.SearchEngine,
		"chrome-path": &cfg.ChromePath,
		"proxy":       &cfg.ProxyAddress,
		"output":      &cfg.OutputFile,
		"report-file": &cfg.ReportFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	durationFlags := map[string]*time.Duration{
		"timeout":  &cfg.PageTimeout,
		"delay":    &cfg.CompanyDelay,
		"interval": &cfg.RequestInterval,
	}
	for name, dst := range durationFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	intFlags := map[string]*int{
		"max-subpages": &cfg.MaxSubpages,
		"max-pdfs":     &cfg.MaxPDFs,
		"workers":      &cfg.DocumentWorkers,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	boolFlags := map[string]*bool{
		"no-browser":   &cfg.NoBrowser,
		"json":         &cfg.JSONReport,
		"markdown":     &cfg.MarkdownReport,
		"save-db":      &cfg.SaveToDB,
		"process-pdfs": &cfg.ProcessPDFs,
	}
	for name, dst := range boolFlags {
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = *dst || v
	}

	downloadDir, err := flags.GetString("download-dir")
	if err != nil {
		return err
	}
	if downloadDir != "" {
		cfg.DownloadDir = downloadDir
	}

	if cfg.SaveToDB {
		cfg.DBDir = config.XDGDataDir()
	}
	return nil
}

// applyScanArgs reads the company and year positional arguments.
// Without a company argument the config file's companies are used,
// falling back to the default company.
func applyScanArgs(cfg *config.Config, args []string) error {
	switch {
	case len(args) > 0 && args[0] != "":
		cfg.Companies = []string{args[0]}
	case cfg.File != nil && len(cfg.File.Companies) > 0:
		cfg.Companies = cfg.File.Companies
	default:
		cfg.Companies = []string{config.DefaultCompany}
	}

	if len(args) > 1 {
		start, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid start year %q: %w", args[1], err)
		}
		cfg.StartYear = &start
	}
	if len(args) > 2 {
		stop, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid stop year %q: %w", args[2], err)
		}
		cfg.StopYear = &stop
	}
	return nil
}

// newFetcher creates the page fetcher selected by the configuration and
// wraps it with the request throttle. The returned func releases it.
func newFetcher(cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, func(), error) {
	opts := []fetch.Option{
		fetch.WithTimeout(cfg.PageTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithAcceptLanguage(config.DefaultAcceptLanguage),
		fetch.WithLogger(logger),
	}

	if cfg.NoBrowser {
		client, err := newHTTPClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using plain HTTP fetcher", "proxy", cfg.ProxyAddress)
		return fetch.NewThrottled(fetch.NewHTTPFetcher(client, opts...), cfg.RequestInterval), func() {}, nil
	}

	browserOpts := []fetch.BrowserOption{
		fetch.WithExecPath(cfg.ChromePath),
		fetch.WithSettleDelay(cfg.SettleDelay),
	}
	if cfg.ProxyAddress != "" {
		browserOpts = append(browserOpts, fetch.WithProxy(cfg.ProxyAddress))
	}

	browser, err := fetch.NewBrowserFetcher(opts, browserOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser (use --no-browser to fetch without Chrome): %w", err)
	}
	closeFn := func() {
		if err := browser.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}
	return fetch.NewThrottled(browser, cfg.RequestInterval), closeFn, nil
}

// newHTTPClient returns the proxied client when a proxy is configured and
// nil otherwise, which selects the default transport.
func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	if cfg.ProxyAddress == "" {
		return nil, nil
	}
	client, err := fetch.NewProxyClient(cfg.ProxyAddress)
	if err != nil {
		return nil, fmt.Errorf("proxy configuration error: %w", err)
	}
	return client, nil
}

// newStrategy builds the page sourcing strategy. The search strategy falls
// back to direct URL guessing.
func newStrategy(cfg *config.Config, f fetch.Fetcher, logger *slog.Logger) (candidate.Strategy, candidate.Strategy) {
	var overrides []candidate.Override
	if cfg.File != nil {
		for _, o := range cfg.File.Overrides {
			overrides = append(overrides, candidate.Override{Match: o.Match, URLs: o.URLs})
		}
	}
	direct := candidate.NewDirectURLGuess(candidate.NewGenerator(candidate.WithOverrides(overrides...)))

	if cfg.Strategy != config.StrategySearch {
		return direct, nil
	}

	baseURL, _ := cfg.SearchBaseURL()
	search := candidate.NewSearchEngineQuery(f, cfg.SearchEngine, baseURL,
		candidate.WithMaxResults(cfg.MaxSearchResults),
		candidate.WithSearchLogger(logger),
	)
	return search, direct
}

// newPipeline assembles the per-company pipeline.
func newPipeline(cfg *config.Config, f fetch.Fetcher, logger *slog.Logger) (*pipeline.Pipeline, candidate.Strategy, error) {
	strategy, fallback := newStrategy(cfg, f, logger)

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineValidator(&crawler.Validator{
			MinContentLength: cfg.MinContentLength,
			ErrorScanWindow:  cfg.ErrorScanWindow,
		}),
		pipeline.WithPipelineMaxSubpages(cfg.MaxSubpages),
		pipeline.WithPipelineLogger(logger),
	}
	if fallback != nil {
		configOpts = append(configOpts, pipeline.WithPipelineFallback(fallback))
	}
	if cfg.ProcessPDFs {
		proc, err := newDocumentProcessor(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		batch := document.NewBatchProcessor(proc,
			document.WithConcurrency(cfg.DocumentWorkers),
			document.WithBatchLogger(logger),
		)
		configOpts = append(configOpts, pipeline.WithPipelineDocuments(batch, cfg.MaxPDFs))
	}

	return pipeline.DefaultPipeline(f, strategy, pipelineOpts, configOpts...), strategy, nil
}

// newDocumentProcessor creates the PDF processor from the configuration.
func newDocumentProcessor(cfg *config.Config, logger *slog.Logger) (*document.Processor, error) {
	opts := []document.ProcessorOption{
		document.WithUserAgent(cfg.UserAgent),
		document.WithTimeout(cfg.DocumentTimeout),
		document.WithMaxSize(cfg.MaxDownloadSize),
		document.WithChunking(cfg.ChunkSize, cfg.ChunkOverlap),
		document.WithLogger(logger),
	}

	client, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	if client != nil {
		opts = append(opts, document.WithHTTPClient(client))
	}

	return document.NewProcessor(cfg.DownloadDir, opts...), nil
}

// runScan runs every company, then writes the links file, the report and
// the history entry. Candidate failures never fail the scan; only
// cancellation and output errors do.
func runScan(ctx context.Context, cfg *config.Config, years model.YearSet, f fetch.Fetcher, stdout io.Writer, logger *slog.Logger) error {
	p, strategy, err := newPipeline(cfg, f, logger)
	if err != nil {
		return err
	}

	orch := pipeline.NewOrchestrator(p, years,
		pipeline.WithCompanyDelay(cfg.CompanyDelay),
		pipeline.WithStrategyName(strategy.Name()),
		pipeline.WithOrchestratorLogger(logger),
	)

	logger.Info("starting scan",
		"companies", cfg.Companies,
		"years", years.String(),
		"strategy", strategy.Name(),
		"saveToDB", cfg.SaveToDB,
	)

	run, runErr := orch.Run(ctx, cfg.Companies)

	if err := report.WriteOutputFile(cfg.OutputFile, run); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.OutputFile, err)
	}
	logger.Info("links written", "path", cfg.OutputFile, "results", len(run.Results()), "links", run.LinkCount())
	if reportFormat(cfg) == report.FormatSimple && cfg.ReportFile == "" {
		fmt.Fprintf(stdout, "Saved %d results with %d PDF links to %s\n\n",
			len(run.Results()), run.LinkCount(), cfg.OutputFile)
	}

	if err := outputReport(cfg, run, stdout); err != nil {
		logger.Error("report failed", "error", err)
	}

	// A cancelled run is still recorded so that history shows what was found.
	if err := saveRun(context.WithoutCancel(ctx), cfg, run, logger); err != nil {
		logger.Error("failed to save run", "error", err)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("scan interrupted: %w", runErr)
		}
		return runErr
	}
	return nil
}

// reportFormat maps the report flags to a report format name.
func reportFormat(cfg *config.Config) string {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatSimple
	}
}

// openReportOutput returns the report destination: the report file when
// configured, stdout otherwise.
func openReportOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, f.Close, nil
}

// outputReport writes the run report in the requested format.
func outputReport(cfg *config.Config, run *model.RunReport, stdout io.Writer) error {
	out, closeFn, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	var w report.Writer
	if format := reportFormat(cfg); format == report.FormatSimple {
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	} else {
		w = report.NewWriter(format, out, getVersion())
	}

	_, err = w.Write(run)
	return err
}

// saveRun stores the run in the history database when enabled.
func saveRun(ctx context.Context, cfg *config.Config, run *model.RunReport, logger *slog.Logger) error {
	if !cfg.SaveToDB || cfg.DBDir == "" {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}

	logger.Info("run saved to database", "run_id", run.ID, "path", db.Path())
	return nil
}
