package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/wayback-scraper/internal/models"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultCDXEndpoint is the Wayback Machine CDX index API
	DefaultCDXEndpoint = "https://web.archive.org/cdx/search/cdx"
	// DefaultArchiveBase is the prefix archived content is served under
	DefaultArchiveBase = "https://web.archive.org/web"

	requestTimeout = 30 * time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// WaybackClient handles Wayback Machine CDX listing and snapshot downloads
type WaybackClient struct {
	httpClient  *http.Client
	logger      *log.Logger
	cdxEndpoint string
	archiveBase string
}

// Option configures a WaybackClient
type Option func(*WaybackClient)

// WithCDXEndpoint overrides the CDX index endpoint (mirrors, tests)
func WithCDXEndpoint(endpoint string) Option {
	return func(c *WaybackClient) {
		if endpoint != "" {
			c.cdxEndpoint = strings.TrimRight(endpoint, "?")
		}
	}
}

// WithArchiveBase overrides the archived-content prefix
func WithArchiveBase(base string) Option {
	return func(c *WaybackClient) {
		if base != "" {
			c.archiveBase = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient replaces the default 30 second timeout client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *WaybackClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewWaybackClient creates a new Wayback Machine client
// A nil logger silences client logging
func NewWaybackClient(logger *log.Logger, opts ...Option) *WaybackClient {
	c := &WaybackClient{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger:      logger,
		cdxEndpoint: DefaultCDXEndpoint,
		archiveBase: DefaultArchiveBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractRootDomain extracts the root domain from a URL or hostname
// Uses publicsuffix to handle complex TLDs like .co.uk
// Examples:
//   - "https://playground.bfl.ai/" -> "bfl.ai"
//   - "example.com/about" -> "example.com"
func ExtractRootDomain(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty input")
	}

	// Bare hosts with a path ("example.com/about") parse as a path, so add a scheme
	if !strings.Contains(input, "://") {
		input = "http://" + input
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	host := strings.TrimSuffix(parsed.Hostname(), ".")
	if host == "" {
		return "", fmt.Errorf("no host in %q", input)
	}

	rootDomain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("failed to extract root domain: %w", err)
	}

	return rootDomain, nil
}

// BuildCDXQuery constructs the raw query string for the CDX API
// Returns the query string WITHOUT the leading '?'
// collapse=timestamp:8 keeps at most one capture per calendar day
func BuildCDXQuery(targetURL string, limit int) string {
	query := fmt.Sprintf(
		"url=%s&output=json&collapse=timestamp:8&filter=statuscode:200",
		url.QueryEscape(strings.TrimSpace(targetURL)),
	)

	if limit > 0 {
		query += fmt.Sprintf("&limit=%d", limit)
	}

	return query
}

// CDXURL returns the full index query URL for a target
func (c *WaybackClient) CDXURL(targetURL string, limit int) string {
	return c.cdxEndpoint + "?" + BuildCDXQuery(targetURL, limit)
}

// FetchSnapshots lists the captures of targetURL
// The result is never nil: on failure it is empty and the error says why,
// so callers can treat a broken listing as "nothing to download"
func (c *WaybackClient) FetchSnapshots(ctx context.Context, targetURL string, limit int) ([]models.SnapshotRecord, error) {
	empty := []models.SnapshotRecord{}
	rawURL := c.CDXURL(targetURL, limit)

	if c.logger != nil {
		c.logger.Debug("Fetching CDX listing", "url", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return empty, fmt.Errorf("failed to create request: %w", err)
	}
	setBrowserHeaders(req, "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return empty, fmt.Errorf("CDX API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := readBody(resp)
	if err != nil {
		return empty, err
	}

	records, err := parseCDXResponse(body)
	if err != nil {
		return empty, err
	}

	if c.logger != nil {
		c.logger.Debug("CDX listing fetched", "records", len(records))
	}

	return records, nil
}

// parseCDXResponse parses the CDX JSON response
// Format: [[header...], [row...], ...]
// Each row is zipped positionally against the header; short rows only
// fill the columns they have and extra cells are dropped
func parseCDXResponse(body []byte) ([]models.SnapshotRecord, error) {
	records := []models.SnapshotRecord{}

	// The API answers an empty body instead of [] for some unknown URLs
	if len(bytes.TrimSpace(body)) == 0 {
		return records, nil
	}

	var rawRows [][]string
	if err := json.Unmarshal(body, &rawRows); err != nil {
		return records, fmt.Errorf("failed to parse JSON: %w", err)
	}

	// Need at least header + 1 data row
	if len(rawRows) < 2 {
		return records, nil
	}

	header := rawRows[0]
	for _, row := range rawRows[1:] {
		record := make(models.SnapshotRecord, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			record[name] = row[i]
		}
		records = append(records, record)
	}

	return records, nil
}

// setBrowserHeaders sets headers emulating a real browser
func setBrowserHeaders(req *http.Request, accept string) {
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", "https://web.archive.org/")
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")
}

// readBody reads the response body, handling gzip-compressed responses
// Setting Accept-Encoding by hand turns off the transport's transparent decompression
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	contentEncoding := strings.ToLower(resp.Header.Get("Content-Encoding"))
	if strings.Contains(contentEncoding, "gzip") {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
