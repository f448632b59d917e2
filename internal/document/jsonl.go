package document

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MetadataPath returns the metadata file written next to a JSONL file:
// "<dir>/<base>_metadata.json".
func MetadataPath(jsonlPath string) string {
	return strings.TrimSuffix(jsonlPath, filepath.Ext(jsonlPath)) + "_metadata.json"
}

// SaveJSONL writes one chunk per line to path and the metadata, indented,
// to MetadataPath(path).
func SaveJSONL(result *Result, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	meta, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(MetadataPath(path), meta, 0o600); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // path is built from the download dir
	if err != nil {
		return fmt.Errorf("failed to create jsonl file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, chunk := range result.Chunks {
		if err := enc.Encode(chunk); err != nil {
			return fmt.Errorf("failed to encode chunk %s: %w", chunk.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write jsonl file: %w", err)
	}
	return f.Close()
}

// JSONLPath returns the output path for a downloaded PDF's chunks.
func JSONLPath(dir, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return filepath.Join(dir, base+".jsonl")
}
