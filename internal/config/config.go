package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "esgscan"

	// DefaultCompany is probed when no company is given on the command line.
	DefaultCompany = "Boeing"

	// DefaultPageTimeout bounds a single page fetch, including rendering.
	DefaultPageTimeout = 15 * time.Second

	// DefaultDocumentTimeout bounds a single PDF download.
	DefaultDocumentTimeout = 30 * time.Second

	// DefaultCompanyDelay is the fixed wait between two companies of a run.
	DefaultCompanyDelay = 2 * time.Second

	// DefaultRequestInterval is the minimum interval between two page fetches.
	// Zero disables throttling.
	DefaultRequestInterval = 0

	// DefaultSettleDelay is how long the browser waits after the body is ready
	// so that client-side scripts can finish injecting links.
	DefaultSettleDelay = 1 * time.Second

	// DefaultUserAgent is a desktop Chrome user agent. Corporate sites
	// frequently serve stub pages to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage is sent with every page request.
	DefaultAcceptLanguage = "en-US,en;q=0.9"

	// DefaultOutputFile is the name of the harvested links artifact.
	DefaultOutputFile = "esg-pdf-urls.json"

	// DefaultMinContentLength is the HTML length a page must exceed to be valid.
	DefaultMinContentLength = 500

	// DefaultErrorScanWindow is how many leading HTML characters are scanned
	// for error phrases.
	DefaultErrorScanWindow = 2000

	// DefaultMaxSubpages is how many subpages are followed per accepted page.
	DefaultMaxSubpages = 3

	// DefaultMaxSearchResults caps the URLs taken from a search results page.
	DefaultMaxSearchResults = 5

	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 2000

	// DefaultChunkOverlap is the overlap between chunks in characters.
	DefaultChunkOverlap = 200

	// DefaultDocumentWorkers is how many PDFs are processed concurrently.
	DefaultDocumentWorkers = 2

	// DefaultMaxPDFs caps how many harvested PDFs are processed per company.
	DefaultMaxPDFs = 10

	// DefaultMaxDownloadSize limits a single PDF download.
	DefaultMaxDownloadSize = 50 * 1024 * 1024 // 50MB
)

// Page sourcing strategy names.
const (
	StrategyDirect = "direct"
	StrategySearch = "search"
)

// Search engine names.
const (
	EngineGoogle     = "google"
	EngineBing       = "bing"
	EngineDuckDuckGo = "duckduckgo"
)

// DefaultSearchEngines maps engine names to the base URL the escaped query
// is appended to.
var DefaultSearchEngines = map[string]string{
	EngineGoogle:     "https://www.google.com/search?q=",
	EngineBing:       "https://www.bing.com/search?q=",
	EngineDuckDuckGo: "https://duckduckgo.com/html/?q=",
}

// Config holds all configuration options for esgscan.
// It is populated from defaults, the config file, the environment and
// CLI flags, in that order, and passed down explicitly.
type Config struct {
	// Companies is the list of company names to probe, in order.
	Companies []string

	// StartYear and StopYear bound the year filter. Nil means unset.
	StartYear *int
	StopYear  *int

	// PageTimeout bounds one page fetch.
	PageTimeout time.Duration

	// DocumentTimeout bounds one PDF download.
	DocumentTimeout time.Duration

	// CompanyDelay is the wait between companies.
	CompanyDelay time.Duration

	// RequestInterval is the minimum spacing between page fetches.
	RequestInterval time.Duration

	// SettleDelay is the post-load wait inside the browser.
	SettleDelay time.Duration

	// UserAgent is sent with every page and PDF request.
	UserAgent string

	// ChromePath points at a Chrome binary. Empty lets chromedp find one.
	ChromePath string

	// NoBrowser switches page fetching to plain HTTP without rendering.
	NoBrowser bool

	// ProxyAddress is a SOCKS5 proxy ("host:port") for pages and PDFs.
	// Empty connects directly.
	ProxyAddress string

	// OutputFile is where esg-pdf-urls.json is written.
	OutputFile string

	// MinContentLength and ErrorScanWindow tune the page validator.
	MinContentLength int
	ErrorScanWindow  int

	// MaxSubpages is how many subpages are followed per accepted page.
	MaxSubpages int

	// Strategy selects how candidate pages are sourced ("direct" or "search").
	Strategy string

	// SearchEngine names the engine used by the search strategy.
	SearchEngine string

	// MaxSearchResults caps the URLs taken from one results page.
	MaxSearchResults int

	// ProcessPDFs enables downloading and chunking of harvested PDFs.
	ProcessPDFs bool

	// ChunkSize and ChunkOverlap control text chunking, in characters.
	ChunkSize    int
	ChunkOverlap int

	// DocumentWorkers bounds concurrent PDF processing.
	DocumentWorkers int

	// MaxPDFs caps the PDFs processed per company.
	MaxPDFs int

	// MaxDownloadSize limits one PDF download in bytes.
	MaxDownloadSize int64

	// DownloadDir receives downloaded PDFs and their JSONL output.
	DownloadDir string

	// DBDir is the directory of the run history database.
	// Empty disables persistence.
	DBDir string

	// SaveToDB indicates whether runs are written to the history database.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// JSONReport and MarkdownReport select the console report format.
	// They are mutually exclusive; neither means the simple summary.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the console report to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit path to the YAML config file.
	ConfigFilePath string

	// File is the loaded YAML config file, if any.
	File *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		PageTimeout:      DefaultPageTimeout,
		DocumentTimeout:  DefaultDocumentTimeout,
		CompanyDelay:     DefaultCompanyDelay,
		RequestInterval:  DefaultRequestInterval,
		SettleDelay:      DefaultSettleDelay,
		UserAgent:        DefaultUserAgent,
		OutputFile:       DefaultOutputFile,
		MinContentLength: DefaultMinContentLength,
		ErrorScanWindow:  DefaultErrorScanWindow,
		MaxSubpages:      DefaultMaxSubpages,
		Strategy:         StrategyDirect,
		SearchEngine:     EngineDuckDuckGo,
		MaxSearchResults: DefaultMaxSearchResults,
		ChunkSize:        DefaultChunkSize,
		ChunkOverlap:     DefaultChunkOverlap,
		DocumentWorkers:  DefaultDocumentWorkers,
		MaxPDFs:          DefaultMaxPDFs,
		MaxDownloadSize:  DefaultMaxDownloadSize,
		DownloadDir:      filepath.Join(XDGCacheDir(), "downloads"),
	}
}

// XDGDataDir returns the XDG data directory for esgscan.
// On Linux: ~/.local/share/esgscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for esgscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for esgscan.
// On Linux: ~/.cache/esgscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// SearchBaseURL returns the base URL for the configured search engine.
// Engines defined in the config file take precedence over the built-in ones.
func (c *Config) SearchBaseURL() (string, bool) {
	if c.File != nil {
		if base, ok := c.File.SearchEngines[c.SearchEngine]; ok && base != "" {
			return base, true
		}
	}
	base, ok := DefaultSearchEngines[c.SearchEngine]
	return base, ok
}

// Validate checks if the configuration is valid.
// The first problem found is returned.
func (c *Config) Validate() error {
	if len(c.Companies) == 0 {
		return ErrNoCompany
	}

	if c.PageTimeout <= 0 || c.DocumentTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CompanyDelay < 0 || c.RequestInterval < 0 || c.SettleDelay < 0 {
		return ErrInvalidDelay
	}

	if c.OutputFile == "" {
		return ErrEmptyOutputFile
	}

	if c.MinContentLength < 0 || c.ErrorScanWindow < 0 || c.MaxSubpages < 0 {
		return ErrInvalidThreshold
	}

	switch c.Strategy {
	case StrategyDirect:
	case StrategySearch:
		if _, ok := c.SearchBaseURL(); !ok {
			return ErrUnknownSearchEngine
		}
		if c.MaxSearchResults <= 0 {
			return ErrInvalidThreshold
		}
	default:
		return ErrUnknownStrategy
	}

	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return ErrInvalidChunking
	}

	if c.DocumentWorkers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxPDFs < 0 || c.MaxDownloadSize < 0 {
		return ErrInvalidThreshold
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
