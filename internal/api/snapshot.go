package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout is the 14-digit Wayback capture time: YYYYMMDDhhmmss
const timestampLayout = "20060102150405"

// ErrInvalidTimestamp is returned for capture times that are not YYYYMMDDhhmmss
var ErrInvalidTimestamp = errors.New("invalid wayback timestamp")

// SnapshotTime parses the first 14 characters of a Wayback timestamp
// Anything after them (e.g. the "id_" qualifier) is ignored
func SnapshotTime(timestamp string) (time.Time, error) {
	if len(timestamp) < 14 {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than 14 characters", ErrInvalidTimestamp, timestamp)
	}
	prefix := timestamp[:14]
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidTimestamp, prefix)
		}
	}

	t, err := time.Parse(timestampLayout, prefix)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return t, nil
}

// SnapshotFilename derives the output filename for a capture
// Example: "20201231235959id_" -> "2020-12-31_23-59-59.html"
// Two captures in the same second map to the same name
func SnapshotFilename(timestamp string) (string, error) {
	t, err := SnapshotTime(timestamp)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02_15-04-05") + ".html", nil
}

// ArchiveURL builds the archived-content URL for a capture
// The timestamp and original URL are embedded verbatim, except that a '%'
// not starting a valid escape becomes "%25" so the URL still parses
func (c *WaybackClient) ArchiveURL(timestamp, originalURL string) string {
	return fmt.Sprintf("%s/%s/%s", c.archiveBase, timestamp, escapeBarePercent(originalURL))
}

// escapeBarePercent rewrites every '%' not followed by two hex digits as "%25"
// Example: "http://example.com/100%" -> "http://example.com/100%25"
func escapeBarePercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !(i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// DownloadSnapshot fetches one archived capture and writes the raw body
// into outputDir, which must already exist. An existing file with the same
// name is overwritten. Returns the path written
func (c *WaybackClient) DownloadSnapshot(ctx context.Context, timestamp, originalURL, outputDir string) (string, error) {
	filename, err := SnapshotFilename(timestamp)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, filename)
	archiveURL := c.ArchiveURL(timestamp, originalURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	setBrowserHeaders(req, "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("archive returned status %d for %s", resp.StatusCode, archiveURL)
	}

	body, err := readBody(resp)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Snapshot saved", "url", archiveURL, "path", path, "bytes", len(body))
	}

	return path, nil
}
