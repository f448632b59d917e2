package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/esgscan/internal/config"
	"github.com/nao1215/esgscan/internal/crawler"
	"github.com/nao1215/esgscan/internal/document"
	applog "github.com/nao1215/esgscan/internal/log"
	"github.com/spf13/cobra"
)

// defaultProcessCompany labels chunks when no company is given.
const defaultProcessCompany = "Unknown"

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <pdf-url> [company]",
		Short: "Download one PDF and split it into keyword-tagged chunks",
		Long: `Process downloads a single PDF, extracts its text, splits it into
overlapping chunks and tags each chunk with ESG keywords.

The chunks are written as JSON lines next to the downloaded PDF, together
with a <name>_metadata.json file.

Examples:
  esgscan process https://www.acmecorp.com/esg-2023.pdf "Acme Corp"

  # Smaller chunks in a specific directory
  esgscan process --chunk-size 1000 --chunk-overlap 100 -d ./out https://www.acmecorp.com/esg-2023.pdf`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runProcessCmd,
	}

	cmd.Flags().StringP("download-dir", "d", "",
		"Directory for the PDF and chunk files (default: XDG cache)")
	cmd.Flags().Int("chunk-size", config.DefaultChunkSize,
		"Target chunk length in characters")
	cmd.Flags().Int("chunk-overlap", config.DefaultChunkOverlap,
		"Overlap between chunks in characters")
	cmd.Flags().DurationP("timeout", "t", config.DefaultDocumentTimeout,
		"Download timeout")

	return cmd
}

// runProcessCmd executes the process command.
func runProcessCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.ApplyEnv(os.LookupEnv)
	cfg.Verbose = getFlagBool(cmd, "verbose")
	cfg.LogJSON = getFlagBool(cmd, "log-json")

	dir, err := cmd.Flags().GetString("download-dir")
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.DownloadDir = dir
	}
	if cfg.ChunkSize, err = cmd.Flags().GetInt("chunk-size"); err != nil {
		return err
	}
	if cfg.ChunkOverlap, err = cmd.Flags().GetInt("chunk-overlap"); err != nil {
		return err
	}
	if cfg.DocumentTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}

	company := defaultProcessCompany
	if len(args) > 1 && args[1] != "" {
		company = args[1]
	}
	cfg.Companies = []string{company}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	return runProcess(cmd.Context(), cfg, args[0], company, cmd.OutOrStdout(), logger)
}

// runProcess processes one PDF and writes its chunks.
func runProcess(ctx context.Context, cfg *config.Config, rawURL, company string, out io.Writer, logger *slog.Logger) error {
	p, err := newDocumentProcessor(cfg, logger)
	if err != nil {
		return err
	}
	filename := crawler.SafeFilename(company, "document", rawURL)

	result, err := p.Process(ctx, rawURL, filename, company)
	if err != nil {
		return err
	}

	path := document.JSONLPath(p.DownloadDir(), filename)
	if err := document.SaveJSONL(result, path); err != nil {
		return err
	}

	m := result.Metadata
	fmt.Fprintf(out, "Processed %s\n", rawURL)
	fmt.Fprintf(out, "  pages:    %d\n", m.TotalPages)
	fmt.Fprintf(out, "  chunks:   %d\n", m.TotalChunks)
	fmt.Fprintf(out, "  text:     %d characters\n", m.TotalTextLength)
	fmt.Fprintf(out, "  keywords: %d\n", m.ESGKeywords.Count())
	fmt.Fprintf(out, "  pdf:      %s\n", result.LocalPath)
	fmt.Fprintf(out, "  output:   %s\n", path)
	fmt.Fprintf(out, "  metadata: %s\n", document.MetadataPath(path))
	return nil
}
