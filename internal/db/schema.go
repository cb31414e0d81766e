package db

// Schema for journaled scrape sessions
const createScrapeSessionsTable = `
CREATE TABLE IF NOT EXISTS scrape_sessions (
    id TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    domain TEXT,
    output_dir TEXT NOT NULL,
    total INTEGER NOT NULL DEFAULT 0,
    successful INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL,
    finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_url ON scrape_sessions(url);
CREATE INDEX IF NOT EXISTS idx_sessions_domain ON scrape_sessions(domain);
`

// Schema for per-snapshot download outcomes
const createSnapshotDownloadsTable = `
CREATE TABLE IF NOT EXISTS snapshot_downloads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES scrape_sessions(id),
    idx INTEGER NOT NULL,
    timestamp TEXT,
    original TEXT,
    path TEXT,
    error TEXT,
    downloaded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_downloads_session ON snapshot_downloads(session_id);
`

// SQL queries for sessions
const insertScrapeSession = `
INSERT INTO scrape_sessions (id, url, domain, output_dir, total, started_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const updateScrapeSessionTotal = `
UPDATE scrape_sessions SET total = ? WHERE id = ?
`

const finishScrapeSession = `
UPDATE scrape_sessions SET successful = ?, failed = ?, finished_at = ? WHERE id = ?
`

const selectScrapeSessions = `
SELECT id, url, COALESCE(domain, ''), output_dir, total, successful, failed, started_at, COALESCE(finished_at, '')
FROM scrape_sessions
ORDER BY started_at DESC
LIMIT ?
`

const selectScrapeSession = `
SELECT id, url, COALESCE(domain, ''), output_dir, total, successful, failed, started_at, COALESCE(finished_at, '')
FROM scrape_sessions
WHERE id = ?
`

// SQL queries for downloads
const insertSnapshotDownload = `
INSERT INTO snapshot_downloads (session_id, idx, timestamp, original, path, error, downloaded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const selectSnapshotDownloads = `
SELECT session_id, idx, COALESCE(timestamp, ''), COALESCE(original, ''), COALESCE(path, ''), COALESCE(error, ''), downloaded_at
FROM snapshot_downloads
WHERE session_id = ?
ORDER BY idx ASC
`
