// Package artifact writes the per-request output files and serves them
// back strictly from a fixed allow-list.
//
// The artifact filenames are process-wide: concurrent requests race on
// them and the last writer wins. The service assumes a single operator
// driving one request at a time; request-scoped filenames would be a
// deliberate redesign, not a fix.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/earth-sol/onefilellm/config"
	"github.com/earth-sol/onefilellm/internal/dispatch"
)

// Normalizer produces the compressed artifact from the uncompressed one.
type Normalizer func(inputPath, outputPath string) error

// TokenCounter counts tokens in artifact text.
type TokenCounter func(text string) int

// Set describes one complete artifact pair with its token counts.
type Set struct {
	UncompressedPath   string
	CompressedPath     string
	UncompressedTokens int
	CompressedTokens   int
}

// Writer materializes retrieval output as the two fixed artifact files
// plus the crawl sidecar.
type Writer struct {
	dir          string
	uncompressed string
	compressed   string
	urlList      string
	normalize    Normalizer
	countTokens  TokenCounter
}

func NewWriter(cfg config.OutputConfig, normalize Normalizer, countTokens TokenCounter) *Writer {
	return &Writer{
		dir:          cfg.Dir,
		uncompressed: cfg.UncompressedFile,
		compressed:   cfg.CompressedFile,
		urlList:      cfg.URLListFile,
		normalize:    normalize,
		countTokens:  countTokens,
	}
}

// Write replaces any previous artifacts with the given content, derives
// the compressed variant, and reads both files back to compute token
// counts. Any filesystem failure aborts: a partial artifact set is never
// reported as complete.
func (w *Writer) Write(content dispatch.Content) (Set, error) {
	uncompressedPath := filepath.Join(w.dir, w.uncompressed)
	compressedPath := filepath.Join(w.dir, w.compressed)

	if err := os.WriteFile(uncompressedPath, []byte(content.Text), 0o644); err != nil {
		return Set{}, fmt.Errorf("write uncompressed artifact: %w", err)
	}
	if len(content.VisitedURLs) > 0 {
		urlListPath := filepath.Join(w.dir, w.urlList)
		listing := strings.Join(content.VisitedURLs, "\n") + "\n"
		if err := os.WriteFile(urlListPath, []byte(listing), 0o644); err != nil {
			return Set{}, fmt.Errorf("write url listing: %w", err)
		}
	}
	if err := w.normalize(uncompressedPath, compressedPath); err != nil {
		return Set{}, fmt.Errorf("produce compressed artifact: %w", err)
	}

	uncompressedText, err := os.ReadFile(uncompressedPath)
	if err != nil {
		return Set{}, fmt.Errorf("read back uncompressed artifact: %w", err)
	}
	compressedText, err := os.ReadFile(compressedPath)
	if err != nil {
		return Set{}, fmt.Errorf("read back compressed artifact: %w", err)
	}

	return Set{
		UncompressedPath:   uncompressedPath,
		CompressedPath:     compressedPath,
		UncompressedTokens: w.countTokens(string(uncompressedText)),
		CompressedTokens:   w.countTokens(string(compressedText)),
	}, nil
}
