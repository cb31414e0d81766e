// Package scraper runs a scrape session: list the captures of a URL once,
// optionally persist the listing, then download each capture in order with a
// fixed pause between requests.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/wayback-scraper/internal/api"
	"github.com/thesavant42/wayback-scraper/internal/models"
)

// ErrMissingField is returned for records without a timestamp or original URL
var ErrMissingField = errors.New("snapshot record is missing a required field")

// Client lists and downloads captures; *api.WaybackClient implements it
type Client interface {
	FetchSnapshots(ctx context.Context, targetURL string, limit int) ([]models.SnapshotRecord, error)
	DownloadSnapshot(ctx context.Context, timestamp, originalURL, outputDir string) (string, error)
}

// Journal records sessions and per-record outcomes; *db.DB implements it
type Journal interface {
	StartSession(s models.ScrapeSessionRecord) error
	SetSessionTotal(sessionID string, total int) error
	RecordDownload(sessionID string, r models.DownloadResult, at time.Time) error
	FinishSession(sessionID string, summary models.Summary, at time.Time) error
}

// Scraper runs one scrape session
type Scraper struct {
	session  models.Session
	client   Client
	logger   *log.Logger
	reporter Reporter
	journal  Journal
	clock    Clock
	ids      IDGenerator
	sleep    Sleeper
}

// Option configures a Scraper
type Option func(*Scraper)

// WithLogger sets the diagnostic logger; nil silences it
func WithLogger(logger *log.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

// WithReporter sets the user-facing progress reporter
func WithReporter(r Reporter) Option {
	return func(s *Scraper) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithJournal enables the run journal
func WithJournal(j Journal) Option {
	return func(s *Scraper) { s.journal = j }
}

// WithClock replaces the wall clock used for scraped_at and the journal
func WithClock(c Clock) Option {
	return func(s *Scraper) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator replaces the session ID generator
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Scraper) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithSleeper replaces the pause between downloads
func WithSleeper(fn Sleeper) Option {
	return func(s *Scraper) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// New creates a Scraper for session
func New(session models.Session, client Client, opts ...Option) *Scraper {
	s := &Scraper{
		session:  session,
		client:   client,
		reporter: NopReporter{},
		clock:    RealClock{},
		ids:      UUIDGenerator{},
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the session: ensure the output directory, list, persist
// metadata, download every record, report
// Listing and download failures never abort the run; the only returned error
// is failing to create the output directory
func (s *Scraper) Run(ctx context.Context) (models.Summary, error) {
	outputDir := s.session.OutputDir
	summary := models.Summary{OutputDir: outputDir}
	if abs, err := filepath.Abs(outputDir); err == nil {
		summary.OutputDir = abs
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	sessionID := s.startJournal(summary.OutputDir)

	var records []models.SnapshotRecord
	var listErr error
	s.reporter.Listing(s.session.URL, func() {
		records, listErr = s.client.FetchSnapshots(ctx, s.session.URL, s.session.Limit)
	})
	if listErr != nil {
		s.debug("Error fetching snapshots", "url", s.session.URL, "error", listErr)
		records = nil
	}
	s.reporter.ListingDone(len(records), listErr)

	if len(records) == 0 {
		s.reporter.NothingToDownload()
		s.finishJournal(sessionID, summary)
		return summary, nil
	}

	s.journalTotal(sessionID, len(records))

	if s.session.SaveMetadata {
		doc := NewMetadataDocument(s.session.URL, records, s.clock.Now())
		path, err := WriteMetadata(outputDir, doc)
		if err != nil {
			s.logError("Failed to save metadata", "dir", outputDir, "error", err)
		} else {
			s.reporter.MetadataSaved(path)
		}
	}

	total := len(records)
	for i, record := range records {
		index := i + 1

		result := s.download(ctx, index, total, record)
		if result.OK() {
			summary.Successful++
		} else {
			summary.Failed++
			s.debug("Snapshot download failed", "index", index, "timestamp", result.Timestamp, "error", result.Err)
		}
		s.reporter.DownloadFinished(index, total, result)
		s.journalDownload(sessionID, result)

		if index < total {
			if err := s.sleep(ctx, s.session.Delay); err != nil {
				s.debug("Delay interrupted", "error", err)
			}
		}
	}

	s.finishJournal(sessionID, summary)
	s.reporter.Finished(summary)
	return summary, nil
}

// download fetches one record; required fields are checked here, not at parse time
func (s *Scraper) download(ctx context.Context, index, total int, record models.SnapshotRecord) models.DownloadResult {
	timestamp, hasTimestamp := record.Timestamp()
	original, hasOriginal := record.Original()
	result := models.DownloadResult{Index: index, Timestamp: timestamp, Original: original}

	s.reporter.DownloadStarted(index, total, timestamp)

	switch {
	case !hasTimestamp:
		result.Err = fmt.Errorf("%w: %s", ErrMissingField, models.FieldTimestamp)
	case !hasOriginal:
		result.Err = fmt.Errorf("%w: %s", ErrMissingField, models.FieldOriginal)
	default:
		result.Path, result.Err = s.client.DownloadSnapshot(ctx, timestamp, original, s.session.OutputDir)
	}
	return result
}

// startJournal opens a journal session; journal errors are logged and ignored
func (s *Scraper) startJournal(outputDir string) string {
	if s.journal == nil {
		return ""
	}

	id := s.ids.New()
	domain, err := api.ExtractRootDomain(s.session.URL)
	if err != nil {
		s.debug("No root domain for journal", "url", s.session.URL, "error", err)
		domain = ""
	}

	err = s.journal.StartSession(models.ScrapeSessionRecord{
		ID:        id,
		URL:       s.session.URL,
		Domain:    domain,
		OutputDir: outputDir,
		StartedAt: s.clock.Now(),
	})
	if err != nil {
		s.warn("Journal unavailable for this session", "error", err)
		return ""
	}
	s.debug("Journaling session", "id", id)
	return id
}

func (s *Scraper) journalTotal(sessionID string, total int) {
	if s.journal == nil || sessionID == "" {
		return
	}
	if err := s.journal.SetSessionTotal(sessionID, total); err != nil {
		s.warn("Failed to journal session total", "error", err)
	}
}

func (s *Scraper) journalDownload(sessionID string, result models.DownloadResult) {
	if s.journal == nil || sessionID == "" {
		return
	}
	if err := s.journal.RecordDownload(sessionID, result, s.clock.Now()); err != nil {
		s.warn("Failed to journal download", "index", result.Index, "error", err)
	}
}

func (s *Scraper) finishJournal(sessionID string, summary models.Summary) {
	if s.journal == nil || sessionID == "" {
		return
	}
	if err := s.journal.FinishSession(sessionID, summary, s.clock.Now()); err != nil {
		s.warn("Failed to journal session end", "error", err)
	}
}

func (s *Scraper) debug(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}

func (s *Scraper) warn(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}

func (s *Scraper) logError(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Error(msg, keyvals...)
	}
}
