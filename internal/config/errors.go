package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoCompany is returned when there is no company to probe.
	ErrNoCompany = errors.New("no company specified")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a delay or interval is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrEmptyOutputFile is returned when no output path is configured.
	ErrEmptyOutputFile = errors.New("output file must not be empty")

	// ErrInvalidThreshold is returned when a validator, subpage or
	// document limit is out of range.
	ErrInvalidThreshold = errors.New("invalid threshold: must be non-negative")

	// ErrUnknownStrategy is returned for a sourcing strategy other than
	// "direct" or "search".
	ErrUnknownStrategy = errors.New("unknown strategy: must be direct or search")

	// ErrUnknownSearchEngine is returned when the search engine has no base URL.
	ErrUnknownSearchEngine = errors.New("unknown search engine")

	// ErrInvalidChunking is returned when the chunk size is not positive or
	// the overlap is not smaller than the chunk size.
	ErrInvalidChunking = errors.New("invalid chunking: size must be positive and larger than overlap")

	// ErrInvalidWorkers is returned when the document worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid document workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
