package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/time/rate"
)

// Export formats tried in priority order. Plain text works for Docs and
// Slides; CSV covers Sheets.
var exportFormats = []string{"text/plain", "text/csv"}

// minContentLength is the smallest export body accepted as real content.
// Shorter bodies are usually an empty document or an error page.
const minContentLength = 50

// maxExportSize caps a single export read (5MB).
const maxExportSize = 5 * 1024 * 1024

// ErrNoContent reports that every export format failed or returned
// under-threshold content. Callers treat it as a per-document soft
// failure: skip the document, keep going.
var ErrNoContent = errors.New("no usable content for file")

// Exporter is the slice of the Drive API the fetcher needs. The real
// implementation wraps *drive.Service; tests substitute fakes.
type Exporter interface {
	// Export converts a Google Workspace file to the given MIME type.
	Export(ctx context.Context, fileID, mimeType string) (io.ReadCloser, error)
	// Download fetches a non-Workspace file's raw media.
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Fetcher acquires plain-text content for Drive files, rate limiting all
// outbound calls.
type Fetcher struct {
	exporter Exporter
	limiter  *rate.Limiter
}

func NewFetcher(exporter Exporter, requestsPerSec float64) *Fetcher {
	if requestsPerSec <= 0 {
		requestsPerSec = 5
	}
	return &Fetcher{
		exporter: exporter,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSec), int(requestsPerSec)),
	}
}

// FetchText tries each export format in order and accepts the first body
// whose trimmed length clears minContentLength, finishing with a direct
// media download for non-Workspace files. Returns ErrNoContent when
// nothing usable came back.
func (f *Fetcher) FetchText(ctx context.Context, fileID string) (string, error) {
	for _, format := range exportFormats {
		content, err := f.tryRead(ctx, fileID, format, false)
		if err != nil {
			slog.Debug("export format failed", "file_id", fileID, "format", format, "error", err)
			continue
		}
		if content != "" {
			return content, nil
		}
	}

	content, err := f.tryRead(ctx, fileID, "", true)
	if err == nil && content != "" {
		return content, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNoContent, fileID)
}

func (f *Fetcher) tryRead(ctx context.Context, fileID, mimeType string, download bool) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var (
		rc  io.ReadCloser
		err error
	)
	if download {
		rc, err = f.exporter.Download(ctx, fileID)
	} else {
		rc, err = f.exporter.Export(ctx, fileID, mimeType)
	}
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxExportSize))
	if err != nil {
		return "", fmt.Errorf("read export body: %w", err)
	}

	content := string(data)
	if len(strings.TrimSpace(content)) < minContentLength {
		return "", nil
	}
	return content, nil
}

var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/document/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/presentation/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
}

// ExtractFileID pulls the file id out of a Docs, Sheets, Slides, or Drive
// file URL. A bare id passes through unchanged.
func ExtractFileID(rawURL string) (string, bool) {
	for _, p := range fileIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	// Already an id, not a URL.
	if rawURL != "" && !strings.ContainsAny(rawURL, "/?&. ") {
		return rawURL, true
	}
	return "", false
}
