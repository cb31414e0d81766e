package scraper

import "github.com/thesavant42/wayback-scraper/internal/models"

// Reporter receives user-facing progress for a scrape session
type Reporter interface {
	// Listing runs fetch, which queries the index for targetURL
	Listing(targetURL string, fetch func())
	ListingDone(count int, err error)
	NothingToDownload()
	MetadataSaved(path string)
	DownloadStarted(index, total int, timestamp string)
	DownloadFinished(index, total int, result models.DownloadResult)
	Finished(summary models.Summary)
}

// NopReporter discards all progress; fetch still runs
type NopReporter struct{}

func (NopReporter) Listing(_ string, fetch func())                   { fetch() }
func (NopReporter) ListingDone(int, error)                           {}
func (NopReporter) NothingToDownload()                               {}
func (NopReporter) MetadataSaved(string)                             {}
func (NopReporter) DownloadStarted(int, int, string)                 {}
func (NopReporter) DownloadFinished(int, int, models.DownloadResult) {}
func (NopReporter) Finished(models.Summary)                          {}
