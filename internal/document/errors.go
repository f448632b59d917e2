package document

import "errors"

var (
	// ErrDownload is returned when a PDF cannot be downloaded.
	ErrDownload = errors.New("pdf download failed")

	// ErrTooLarge is returned when a PDF exceeds the download size limit.
	ErrTooLarge = errors.New("pdf exceeds download size limit")

	// ErrExtract is returned when text cannot be extracted from a PDF.
	ErrExtract = errors.New("pdf text extraction failed")

	// ErrInvalidChunking is returned for a non-positive chunk size or an
	// overlap that is not smaller than the chunk size.
	ErrInvalidChunking = errors.New("invalid chunking parameters")
)
