package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/thesavant42/wayback-scraper/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSessionLifecycle(t *testing.T) {
	database := newTestDB(t)
	started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	err := database.StartSession(models.ScrapeSessionRecord{
		ID:        "session-1",
		URL:       "https://example.com/",
		Domain:    "example.com",
		OutputDir: "/tmp/snapshots",
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	s, err := database.GetSession("session-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if s == nil {
		t.Fatal("GetSession() returned nil for an existing session")
	}
	if s.FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil before FinishSession", s.FinishedAt)
	}

	if err := database.SetSessionTotal("session-1", 2); err != nil {
		t.Fatalf("SetSessionTotal() error = %v", err)
	}

	results := []models.DownloadResult{
		{Index: 1, Timestamp: "20200101120000", Original: "https://example.com/", Path: "/tmp/snapshots/2020-01-01_12-00-00.html"},
		{Index: 2, Timestamp: "20200102120000", Original: "https://example.com/", Err: errors.New("archive returned status 404")},
	}
	for _, r := range results {
		if err := database.RecordDownload("session-1", r, started.Add(time.Second)); err != nil {
			t.Fatalf("RecordDownload() error = %v", err)
		}
	}

	finished := started.Add(time.Minute)
	if err := database.FinishSession("session-1", models.Summary{Successful: 1, Failed: 1}, finished); err != nil {
		t.Fatalf("FinishSession() error = %v", err)
	}

	s, err = database.GetSession("session-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if s.Total != 2 || s.Successful != 1 || s.Failed != 1 {
		t.Errorf("counters = total %d, ok %d, failed %d, want 2/1/1", s.Total, s.Successful, s.Failed)
	}
	if s.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", s.Domain, "example.com")
	}
	if !s.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", s.StartedAt, started)
	}
	if s.FinishedAt == nil || !s.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", s.FinishedAt, finished)
	}

	downloads, err := database.GetDownloads("session-1")
	if err != nil {
		t.Fatalf("GetDownloads() error = %v", err)
	}
	if len(downloads) != 2 {
		t.Fatalf("len(downloads) = %d, want 2", len(downloads))
	}
	if downloads[0].Path == "" || downloads[0].Error != "" {
		t.Errorf("downloads[0] = %+v, want a path and no error", downloads[0])
	}
	if downloads[1].Path != "" || downloads[1].Error == "" {
		t.Errorf("downloads[1] = %+v, want an error and no path", downloads[1])
	}
}

func TestGetSessionMissing(t *testing.T) {
	database := newTestDB(t)

	s, err := database.GetSession("nope")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if s != nil {
		t.Errorf("GetSession() = %+v, want nil", s)
	}
}

func TestGetSessionsNewestFirst(t *testing.T) {
	database := newTestDB(t)
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		err := database.StartSession(models.ScrapeSessionRecord{
			ID:        id,
			URL:       "example.com",
			OutputDir: "snapshots",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("StartSession(%s) error = %v", id, err)
		}
	}

	sessions, err := database.GetSessions(2)
	if err != nil {
		t.Fatalf("GetSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].ID != "new" || sessions[1].ID != "mid" {
		t.Errorf("order = %s, %s; want new, mid", sessions[0].ID, sessions[1].ID)
	}

	all, err := database.GetSessions(0)
	if err != nil {
		t.Fatalf("GetSessions(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}
