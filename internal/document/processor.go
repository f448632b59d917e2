package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Default processing limits.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxSize      = 50 * 1024 * 1024 // 50MB
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
	defaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Metadata describes one processed PDF.
type Metadata struct {
	Company         string            `json:"company"`
	SourceURL       string            `json:"source_url"`
	PDFFilename     string            `json:"pdf_filename"`
	TotalPages      int               `json:"total_pages"`
	TotalChunks     int               `json:"total_chunks"`
	TotalTextLength int               `json:"total_text_length"`
	PDFInfo         map[string]string `json:"pdf_info"`
	ESGKeywords     Keywords          `json:"esg_keywords"`
	ProcessedAt     time.Time         `json:"processed_at"`
}

// Chunk is one JSONL record.
type Chunk struct {
	ID            string    `json:"id"`
	Company       string    `json:"company"`
	SourceURL     string    `json:"source_url"`
	PDFFilename   string    `json:"pdf_filename"`
	ChunkIndex    int       `json:"chunk_index"`
	Text          string    `json:"text"`
	TextLength    int       `json:"text_length"`
	StartSentence int       `json:"start_sentence"`
	EndSentence   int       `json:"end_sentence"`
	ESGKeywords   Keywords  `json:"esg_keywords"`
	CreatedAt     time.Time `json:"created_at"`
}

// Result is a processed PDF.
type Result struct {
	Metadata Metadata
	Chunks   []Chunk

	// LocalPath is where the downloaded PDF was written.
	LocalPath string
}

// Processor downloads and processes PDFs.
type Processor struct {
	client       *http.Client
	downloadDir  string
	userAgent    string
	timeout      time.Duration
	maxSize      int64
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
	now          func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) ProcessorOption {
	return func(p *Processor) {
		p.client = client
	}
}

// WithUserAgent sets the User-Agent sent with downloads.
func WithUserAgent(ua string) ProcessorOption {
	return func(p *Processor) {
		p.userAgent = ua
	}
}

// WithTimeout bounds a single download.
func WithTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.timeout = d
	}
}

// WithMaxSize limits a single download in bytes. Zero means no limit.
func WithMaxSize(n int64) ProcessorOption {
	return func(p *Processor) {
		p.maxSize = n
	}
}

// WithChunking sets the chunk size and overlap in characters.
func WithChunking(size, overlap int) ProcessorOption {
	return func(p *Processor) {
		p.chunkSize = size
		p.chunkOverlap = overlap
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor creates a Processor that stores PDFs under downloadDir.
func NewProcessor(downloadDir string, opts ...ProcessorOption) *Processor {
	p := &Processor{
		client:       http.DefaultClient,
		downloadDir:  downloadDir,
		userAgent:    defaultUserAgent,
		timeout:      DefaultTimeout,
		maxSize:      DefaultMaxSize,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DownloadDir returns the directory PDFs are written to.
func (p *Processor) DownloadDir() string {
	return p.downloadDir
}

// Process downloads the PDF at rawURL, extracts its text and chunks it.
func (p *Processor) Process(ctx context.Context, rawURL, filename, company string) (*Result, error) {
	data, err := p.download(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	localPath := filepath.Join(p.downloadDir, filepath.Base(filename))
	if err := os.MkdirAll(p.downloadDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	p.logger.Debug("pdf downloaded", "url", rawURL, "path", localPath, "bytes", len(data))

	text, pages, info, err := extractText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtract, filename, err)
	}

	textChunks, err := ChunkText(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return nil, err
	}

	now := p.now()
	chunks := make([]Chunk, 0, len(textChunks))
	for _, tc := range textChunks {
		chunks = append(chunks, Chunk{
			ID:            fmt.Sprintf("%s_chunk_%d", filename, tc.Index),
			Company:       company,
			SourceURL:     rawURL,
			PDFFilename:   filename,
			ChunkIndex:    tc.Index,
			Text:          tc.Text,
			TextLength:    utf8.RuneCountInString(tc.Text),
			StartSentence: tc.StartSentence,
			EndSentence:   tc.EndSentence,
			ESGKeywords:   ExtractKeywords(tc.Text),
			CreatedAt:     now,
		})
	}

	return &Result{
		Metadata: Metadata{
			Company:         company,
			SourceURL:       rawURL,
			PDFFilename:     filename,
			TotalPages:      pages,
			TotalChunks:     len(chunks),
			TotalTextLength: utf8.RuneCountInString(text),
			PDFInfo:         info,
			ESGKeywords:     ExtractKeywords(text),
			ProcessedAt:     now,
		},
		Chunks:    chunks,
		LocalPath: localPath,
	}, nil
}

// Cleanup removes the download directory and everything in it.
func (p *Processor) Cleanup() error {
	if err := os.RemoveAll(p.downloadDir); err != nil {
		return fmt.Errorf("failed to clean up downloads: %w", err)
	}
	return nil
}

func (p *Processor) download(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrDownload, rawURL, resp.Status)
	}

	var reader io.Reader = resp.Body
	if p.maxSize > 0 {
		reader = io.LimitReader(resp.Body, p.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if p.maxSize > 0 && int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, rawURL)
	}
	return data, nil
}

// infoKeys are the document information entries copied into metadata.
var infoKeys = []string{"Title", "Author", "Subject", "Producer", "Creator", "CreationDate"}

// extractText returns the plain text of every page, the page count and
// the non-empty document information entries.
func extractText(data []byte) (text string, pages int, info map[string]string, err error) {
	defer func() {
		// The pdf reader panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, nil, err
	}

	var b strings.Builder
	pages = reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	info = map[string]string{}
	dict := reader.Trailer().Key("Info")
	if !dict.IsNull() {
		for _, key := range infoKeys {
			if v := strings.TrimSpace(dict.Key(key).Text()); v != "" {
				info[key] = v
			}
		}
	}

	return strings.TrimSpace(b.String()), pages, info, nil
}
