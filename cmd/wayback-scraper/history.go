package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/thesavant42/wayback-scraper/internal/db"
	"github.com/thesavant42/wayback-scraper/internal/models"
	"github.com/thesavant42/wayback-scraper/internal/scraper"
	"github.com/thesavant42/wayback-scraper/internal/ui"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCmd(opts *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show journaled runs, or the downloads of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, os.LookupEnv)
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return fmt.Errorf("no run journal configured (use --history-db or WAYBACK_HISTORY_DB)")
			}

			database, err := db.New(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer database.Close()

			if len(args) == 1 {
				return printDownloads(database, args[0])
			}
			return printSessions(database, count)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of runs to show (0 = all)")
	return cmd
}

func printSessions(database *db.DB, count int) error {
	sessions, err := database.GetSessions(count)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ui.PrintHint("No runs journaled yet.")
		return nil
	}

	t := newTable("ID", "STARTED", "URL", "TOTAL", "OK", "FAILED", "STATUS")
	for _, s := range sessions {
		status := "incomplete"
		if s.FinishedAt != nil {
			status = "finished " + s.FinishedAt.Local().Format(historyTimeLayout)
		}
		t.Row(
			s.ID,
			s.StartedAt.Local().Format(historyTimeLayout),
			s.URL,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Successful),
			strconv.Itoa(s.Failed),
			status,
		)
	}
	fmt.Println(t.Render())
	return nil
}

func printDownloads(database *db.DB, sessionID string) error {
	session, err := database.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no journaled run with id %s", sessionID)
	}

	downloads, err := database.GetDownloads(sessionID)
	if err != nil {
		return err
	}

	fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("%s  (%s)", session.URL, session.OutputDir)))
	fmt.Println(metadataLine(session.OutputDir))
	t := newTable("#", "TIMESTAMP", "RESULT", "WHEN")
	for _, d := range downloads {
		t.Row(strconv.Itoa(d.Index), d.Timestamp, downloadResult(d), d.DownloadedAt.Local().Format(time.TimeOnly))
	}
	fmt.Println(t.Render())
	return nil
}

// metadataLine describes the metadata.json left in a run's output directory
func metadataLine(outputDir string) string {
	doc, err := scraper.ReadMetadata(filepath.Join(outputDir, scraper.MetadataFilename))
	if err != nil {
		return ui.HintStyle.Render("no readable " + scraper.MetadataFilename)
	}
	return ui.InfoStyle.Render(fmt.Sprintf("%s: %d snapshots listed at %s", scraper.MetadataFilename, doc.TotalSnapshots, doc.ScrapedAt))
}

func downloadResult(d models.DownloadRecord) string {
	if d.Error != "" {
		return "✗ " + d.Error
	}
	return "✓ " + d.Path
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorBorder)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.AccentStyle.Padding(0, 1)
			}
			return ui.NormalStyle.Padding(0, 1)
		}).
		Headers(headers...)
}
