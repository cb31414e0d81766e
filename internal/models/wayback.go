package models

import "time"

// CDX field names the downloader depends on
const (
	FieldTimestamp = "timestamp"
	FieldOriginal  = "original"
)

// SnapshotRecord is one row of a CDX response keyed by the header row
// Fields pass through untouched; only timestamp and original are needed to download
type SnapshotRecord map[string]string

// Timestamp returns the 14-digit capture time (YYYYMMDDhhmmss, possibly suffixed)
func (r SnapshotRecord) Timestamp() (string, bool) {
	ts, ok := r[FieldTimestamp]
	return ts, ok && ts != ""
}

// Original returns the originally captured URL
func (r SnapshotRecord) Original() (string, bool) {
	u, ok := r[FieldOriginal]
	return u, ok && u != ""
}

// Session holds the settings for one scrape run
type Session struct {
	URL          string
	OutputDir    string
	Delay        time.Duration
	Limit        int  // 0 means unbounded
	SaveMetadata bool // write metadata.json before downloading
}

// MetadataDocument is the metadata.json written before downloads begin
type MetadataDocument struct {
	URL            string           `json:"url"`
	TotalSnapshots int              `json:"total_snapshots"`
	ScrapedAt      string           `json:"scraped_at"`
	Snapshots      []SnapshotRecord `json:"snapshots"`
}

// DownloadResult is the outcome of downloading a single snapshot
type DownloadResult struct {
	Index     int // 1-based position in the listing
	Timestamp string
	Original  string
	Path      string // empty on failure
	Err       error
}

// OK reports whether the snapshot was written to disk
func (r DownloadResult) OK() bool {
	return r.Err == nil && r.Path != ""
}

// Summary holds the run-level counters reported at the end of a session
type Summary struct {
	Successful int
	Failed     int
	OutputDir  string // absolute path
}

// ScrapeSessionRecord is a journaled scrape session
type ScrapeSessionRecord struct {
	ID         string
	URL        string
	Domain     string
	OutputDir  string
	Total      int
	Successful int
	Failed     int
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the session is running or was interrupted
}

// DownloadRecord is a journaled per-snapshot outcome
type DownloadRecord struct {
	SessionID    string
	Index        int
	Timestamp    string
	Original     string
	Path         string // empty when the download failed
	Error        string // empty when the download succeeded
	DownloadedAt time.Time
}
