package config

import "time"

// Override pins the candidate URLs of companies whose sites cannot be
// guessed from their name.
type Override struct {
	// Match is compared case-insensitively as a substring of the company name.
	Match string `yaml:"match"`

	// URLs are probed in order before any generated URL.
	URLs []string `yaml:"urls"`
}

// Defaults holds file-level replacements for the built-in defaults.
// Zero values leave the built-in default in place.
type Defaults struct {
	PageTimeout     time.Duration `yaml:"page_timeout,omitempty"`
	CompanyDelay    time.Duration `yaml:"company_delay,omitempty"`
	RequestInterval time.Duration `yaml:"request_interval,omitempty"`
	SettleDelay     time.Duration `yaml:"settle_delay,omitempty"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	Output          string        `yaml:"output,omitempty"`
	Strategy        string        `yaml:"strategy,omitempty"`
	SearchEngine    string        `yaml:"search_engine,omitempty"`
	MaxSubpages     int           `yaml:"max_subpages,omitempty"`
	Proxy           string        `yaml:"proxy,omitempty"`
}

// File represents the structure of the .esgscan configuration file.
type File struct {
	// Companies are probed when no company is given on the command line.
	Companies []string `yaml:"companies,omitempty"`

	// Overrides are checked after the built-in override table.
	Overrides []Override `yaml:"overrides,omitempty"`

	// SearchEngines maps extra engine names to query base URLs.
	SearchEngines map[string]string `yaml:"search_engines,omitempty"`

	// Defaults replaces built-in defaults for every run.
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// Apply copies the file's non-zero defaults into cfg and records the file.
// CLI flags are applied afterwards and win over both.
func (f *File) Apply(cfg *Config) {
	cfg.File = f

	d := f.Defaults
	if d.PageTimeout > 0 {
		cfg.PageTimeout = d.PageTimeout
	}
	if d.CompanyDelay > 0 {
		cfg.CompanyDelay = d.CompanyDelay
	}
	if d.RequestInterval > 0 {
		cfg.RequestInterval = d.RequestInterval
	}
	if d.SettleDelay > 0 {
		cfg.SettleDelay = d.SettleDelay
	}
	if d.UserAgent != "" {
		cfg.UserAgent = d.UserAgent
	}
	if d.Output != "" {
		cfg.OutputFile = d.Output
	}
	if d.Strategy != "" {
		cfg.Strategy = d.Strategy
	}
	if d.SearchEngine != "" {
		cfg.SearchEngine = d.SearchEngine
	}
	if d.MaxSubpages > 0 {
		cfg.MaxSubpages = d.MaxSubpages
	}
	if d.Proxy != "" {
		cfg.ProxyAddress = d.Proxy
	}
}
