package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thesavant42/wayback-scraper/internal/models"
)

// StartSession journals a new scrape session
func (db *DB) StartSession(s models.ScrapeSessionRecord) error {
	var domain interface{}
	if s.Domain != "" {
		domain = s.Domain
	}

	_, err := db.conn.Exec(insertScrapeSession,
		s.ID, s.URL, domain, s.OutputDir, s.Total, formatTimestamp(s.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scrape session: %w", err)
	}
	return nil
}

// SetSessionTotal records how many snapshots the listing returned
func (db *DB) SetSessionTotal(sessionID string, total int) error {
	_, err := db.conn.Exec(updateScrapeSessionTotal, total, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session total: %w", err)
	}
	return nil
}

// RecordDownload journals the outcome of one snapshot download
func (db *DB) RecordDownload(sessionID string, r models.DownloadResult, at time.Time) error {
	var path, errText interface{}
	if r.Path != "" {
		path = r.Path
	}
	if r.Err != nil {
		errText = r.Err.Error()
	}

	_, err := db.conn.Exec(insertSnapshotDownload,
		sessionID, r.Index, r.Timestamp, r.Original, path, errText, formatTimestamp(at),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot download %d: %w", r.Index, err)
	}
	return nil
}

// FinishSession stores the final counters of a session
func (db *DB) FinishSession(sessionID string, summary models.Summary, at time.Time) error {
	_, err := db.conn.Exec(finishScrapeSession, summary.Successful, summary.Failed, formatTimestamp(at), sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish scrape session: %w", err)
	}
	return nil
}

// GetSessions returns the most recent sessions, newest first
func (db *DB) GetSessions(limit int) ([]models.ScrapeSessionRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := db.conn.Query(selectScrapeSessions, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.ScrapeSessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// GetSession returns a single session, or nil if it does not exist
func (db *DB) GetSession(sessionID string) (*models.ScrapeSessionRecord, error) {
	s, err := scanSession(db.conn.QueryRow(selectScrapeSession, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// GetDownloads returns the journaled downloads of a session in listing order
func (db *DB) GetDownloads(sessionID string) ([]models.DownloadRecord, error) {
	rows, err := db.conn.Query(selectSnapshotDownloads, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot downloads: %w", err)
	}
	defer rows.Close()

	var downloads []models.DownloadRecord
	for rows.Next() {
		var d models.DownloadRecord
		var downloadedAt string
		if err := rows.Scan(&d.SessionID, &d.Index, &d.Timestamp, &d.Original, &d.Path, &d.Error, &downloadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot download: %w", err)
		}
		d.DownloadedAt, _ = parseTimestamp(downloadedAt)
		downloads = append(downloads, d)
	}
	return downloads, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans one scrape_sessions row
func scanSession(row rowScanner) (*models.ScrapeSessionRecord, error) {
	var s models.ScrapeSessionRecord
	var startedAt, finishedAt string

	err := row.Scan(&s.ID, &s.URL, &s.Domain, &s.OutputDir, &s.Total, &s.Successful, &s.Failed, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scrape session: %w", err)
	}

	s.StartedAt, _ = parseTimestamp(startedAt)
	if finishedAt != "" {
		t, err := parseTimestamp(finishedAt)
		if err == nil {
			s.FinishedAt = &t
		}
	}
	return &s, nil
}
