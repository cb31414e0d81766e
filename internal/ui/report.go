package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/thesavant42/wayback-scraper/internal/api"
	"github.com/thesavant42/wayback-scraper/internal/models"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// ConsoleReporter prints scrape progress for humans
// It satisfies scraper.Reporter
type ConsoleReporter struct {
	out         io.Writer
	interactive bool
	interrupt   func()
	logger      *log.Logger
	bar         progress.Model
}

// ReporterOption configures a ConsoleReporter
type ReporterOption func(*ConsoleReporter)

// WithInteractive forces spinner use on or off
func WithInteractive(on bool) ReporterOption {
	return func(r *ConsoleReporter) { r.interactive = on }
}

// WithInterruptHandler is called when ctrl+c is pressed during the listing spinner
func WithInterruptHandler(fn func()) ReporterOption {
	return func(r *ConsoleReporter) { r.interrupt = fn }
}

// WithReporterLogger logs spinner failures at debug level
func WithReporterLogger(logger *log.Logger) ReporterOption {
	return func(r *ConsoleReporter) { r.logger = logger }
}

// NewConsoleReporter writes to out
// The listing spinner is enabled when out is a terminal
func NewConsoleReporter(out io.Writer, opts ...ReporterOption) *ConsoleReporter {
	r := &ConsoleReporter{
		out:         out,
		interactive: IsTerminal(out),
		bar:         NewAppProgress(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Listing prints the query line and runs fetch, under a spinner on terminals
func (r *ConsoleReporter) Listing(targetURL string, fetch func()) {
	title := fmt.Sprintf("Fetching snapshot list for: %s", targetURL)
	if !r.interactive {
		fmt.Fprintln(r.out, RenderNormal(title))
		fetch()
		return
	}

	var opts []SpinnerOption
	if r.interrupt != nil {
		opts = append(opts, WithInterrupt(r.interrupt))
	}
	if err := RunWithSpinner(title, fetch, opts...); err != nil && r.logger != nil {
		r.logger.Debug("Spinner failed", "error", err)
	}
	fmt.Fprintln(r.out, RenderNormal(title))
}

// ListingDone prints the snapshot count or the listing error
func (r *ConsoleReporter) ListingDone(count int, err error) {
	switch {
	case err != nil:
		fmt.Fprintln(r.out, ErrorStyle.Render(fmt.Sprintf("Error fetching snapshots: %v", err)))
	case count == 0:
		fmt.Fprintln(r.out, AccentStyle.Render("No snapshots found!"))
	default:
		fmt.Fprintln(r.out, InfoStyle.Render(fmt.Sprintf("Found %d snapshots", count)))
	}
}

// NothingToDownload prints the early-exit notice
func (r *ConsoleReporter) NothingToDownload() {
	fmt.Fprintln(r.out, HintStyle.Render("No snapshots to download."))
}

// MetadataSaved prints where metadata.json was written
func (r *ConsoleReporter) MetadataSaved(path string) {
	fmt.Fprintln(r.out, InfoStyle.Render(fmt.Sprintf("Metadata saved to %s", path)))
	fmt.Fprintln(r.out)
}

// DownloadStarted prints the [i/N] prefix and progress bar, leaving the line open
func (r *ConsoleReporter) DownloadStarted(index, total int, timestamp string) {
	percent := 0.0
	if total > 0 {
		percent = float64(index) / float64(total)
	}
	fmt.Fprintf(r.out, "%s %s %s ",
		ProgressStyle.Render(fmt.Sprintf("[%d/%d]", index, total)),
		r.bar.ViewAs(percent),
		RenderNormal(fmt.Sprintf("Downloading snapshot from %s...", displayTime(timestamp))),
	)
}

// DownloadFinished closes the line with the saved path or the failure
func (r *ConsoleReporter) DownloadFinished(_, _ int, result models.DownloadResult) {
	if result.OK() {
		fmt.Fprintln(r.out, SuccessStyle.Render("✓ Saved to "+result.Path))
		return
	}
	fmt.Fprintln(r.out, ErrorStyle.Render(fmt.Sprintf("✗ Failed: %v", result.Err)))
}

// Finished prints the summary box
func (r *ConsoleReporter) Finished(summary models.Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, RenderSummary(summary))
}

// RenderSummary renders the final counts in a bordered box
func RenderSummary(summary models.Summary) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Scraping complete!"))
	b.WriteString("\n")
	b.WriteString(SuccessStyle.Render(fmt.Sprintf("Successful: %d", summary.Successful)))
	b.WriteString("\n")
	failed := NormalStyle
	if summary.Failed > 0 {
		failed = ErrorStyle
	}
	b.WriteString(failed.Render(fmt.Sprintf("Failed: %d", summary.Failed)))
	b.WriteString("\n")
	b.WriteString(RenderNormal("Snapshots saved to: " + summary.OutputDir))

	return BorderStyle.Padding(0, 1).Width(SummaryWidth).Render(b.String())
}

// displayTime formats a capture timestamp for display, falling back to the raw value
func displayTime(timestamp string) string {
	t, err := api.SnapshotTime(timestamp)
	if err != nil {
		if timestamp == "" {
			return "unknown time"
		}
		return timestamp
	}
	return t.Format(displayTimeLayout)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(ErrorStyle.Render("Error: " + message))
}

// PrintHint prints a dim hint line
func PrintHint(message string) {
	fmt.Println(HintStyle.Render(message))
}
