// Debug tool to test Wayback CDX listing directly, without downloading
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/thesavant42/wayback-scraper/internal/api"
	"github.com/thesavant42/wayback-scraper/internal/models"
)

const shownRecords = 3

func main() {
	target := "example.com"
	if len(os.Args) > 1 {
		target = os.Args[1]
	}
	limit := 0
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Printf("ERROR: invalid limit %q\n", os.Args[2])
			os.Exit(2)
		}
		limit = n
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
	})

	client := api.NewWaybackClient(logger)

	fmt.Printf("Testing CDX fetch for: %s\n", target)
	fmt.Printf("Query: %s\n", client.CDXURL(target, limit))
	if domain, err := api.ExtractRootDomain(target); err == nil {
		fmt.Printf("Root domain: %s\n", domain)
	}

	var records []models.SnapshotRecord
	var fetchErr error
	err := spinner.New().
		Title("Fetching snapshot list...").
		Action(func() {
			records, fetchErr = client.FetchSnapshots(context.Background(), target, limit)
		}).
		Run()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	if fetchErr != nil {
		fmt.Printf("ERROR: %v\n", fetchErr)
		os.Exit(1)
	}

	fmt.Printf("\nRecords: %d\n", len(records))

	// Show first records
	fmt.Println("\nFirst records:")
	for i, rec := range records {
		if i >= shownRecords {
			fmt.Printf("  ... and %d more\n", len(records)-shownRecords)
			break
		}
		ts, _ := rec.Timestamp()
		orig, _ := rec.Original()
		name, err := api.SnapshotFilename(ts)
		if err != nil {
			name = "(" + err.Error() + ")"
		}
		fmt.Printf("  %d. %s %s -> %s\n", i+1, ts, orig, name)
		fmt.Printf("     %s\n", client.ArchiveURL(ts, orig))
	}
}
