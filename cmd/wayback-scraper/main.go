package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/thesavant42/wayback-scraper/internal/api"
	"github.com/thesavant42/wayback-scraper/internal/config"
	"github.com/thesavant42/wayback-scraper/internal/db"
	"github.com/thesavant42/wayback-scraper/internal/scraper"
	"github.com/thesavant42/wayback-scraper/internal/ui"
)

// options holds raw flag values; only flags the user set override the config
type options struct {
	configPath string
	envFile    string
	outputDir  string
	limit      int
	delay      float64
	noMetadata bool
	historyDB  string
	verbose    bool
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(&options{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wayback-scraper [url]",
		Short: "Download every archived snapshot of a URL from the Wayback Machine",
		Long: `wayback-scraper lists the captures of a URL in the Wayback Machine CDX index
(at most one per day, HTTP 200 only) and downloads each one into the output
directory as <YYYY-MM-DD_HH-MM-SS>.html, pausing between requests.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outputDir, "output", "o", config.DefaultOutputDir, "output directory")
	f.IntVarP(&opts.limit, "limit", "l", 0, "maximum number of snapshots to list (0 = unbounded)")
	f.Float64VarP(&opts.delay, "delay", "d", config.DefaultDelay, "delay between downloads in seconds")
	f.BoolVar(&opts.noMetadata, "no-metadata", false, "do not write metadata.json")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "TOML config file")
	pf.StringVar(&opts.envFile, "env-file", "", "extra .env file whose WAYBACK_* values win over the environment")
	pf.StringVar(&opts.historyDB, "history-db", "", "SQLite file journaling each run (disabled when empty)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newHistoryCmd(opts), newConfigCmd(opts))
	return cmd
}

func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// loadConfig layers defaults, the TOML file, the environment, the --env-file
// values and set flags
func loadConfig(cmd *cobra.Command, opts *options, lookup func(string) (string, bool)) (*config.Config, error) {
	cfg := config.Default()

	if opts.configPath != "" {
		if err := cfg.ReadFromFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if opts.envFile != "" {
		env, err := config.ReadDotEnv(opts.envFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyEnv(config.MapLookup(env)); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.envFile, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("limit") {
		cfg.Limit = opts.limit
	}
	if flags.Changed("delay") {
		cfg.Delay = opts.delay
	}
	if flags.Changed("no-metadata") {
		cfg.SaveMetadata = !opts.noMetadata
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = opts.historyDB
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, os.LookupEnv)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
}

func newClient(cfg *config.Config, logger *log.Logger) *api.WaybackClient {
	var clientOpts []api.Option
	if cfg.CDXEndpoint != "" {
		clientOpts = append(clientOpts, api.WithCDXEndpoint(cfg.CDXEndpoint))
	}
	if cfg.ArchiveBase != "" {
		clientOpts = append(clientOpts, api.WithArchiveBase(cfg.ArchiveBase))
	}
	return api.NewWaybackClient(logger, clientOpts...)
}

func runScrape(cmd *cobra.Command, args []string, opts *options) error {
	logger := newLogger(opts.verbose)

	cfg, err := loadConfig(cmd, opts, os.LookupEnv)
	if err != nil {
		return err
	}

	var targetURL string
	if len(args) > 0 {
		targetURL = args[0]
	} else {
		if !ui.IsTerminal(os.Stdin) || !ui.IsTerminal(os.Stdout) {
			return fmt.Errorf("missing url argument\n\n%s", cmd.UsageString())
		}
		targetURL, err = ui.PromptForURL()
		if err != nil {
			return err
		}
	}

	if _, err := api.ExtractRootDomain(targetURL); err != nil {
		logger.Warn("Target does not look like a public domain, querying anyway", "url", targetURL, "error", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// debug lines on stderr tear the spinner; verbose runs print plain lines
	reporter := ui.NewConsoleReporter(os.Stdout,
		ui.WithInteractive(ui.IsTerminal(os.Stdout) && !opts.verbose),
		ui.WithInterruptHandler(cancel),
		ui.WithReporterLogger(logger),
	)

	scraperOpts := []scraper.Option{
		scraper.WithLogger(logger),
		scraper.WithReporter(reporter),
	}

	if cfg.HistoryDB != "" {
		database, err := db.New(cfg.HistoryDB)
		if err != nil {
			logger.Warn("Run journal disabled", "path", cfg.HistoryDB, "error", err)
		} else {
			defer database.Close()
			scraperOpts = append(scraperOpts, scraper.WithJournal(database))
			logger.Debug("Journaling run", "path", cfg.HistoryDB)
		}
	}

	session := cfg.Session(targetURL)
	logger.Debug("Starting scrape",
		"url", session.URL,
		"output", session.OutputDir,
		"limit", session.Limit,
		"delay", session.Delay,
		"metadata", session.SaveMetadata,
	)

	if _, err := scraper.New(session, newClient(cfg, logger), scraperOpts...).Run(ctx); err != nil {
		return err
	}

	if ctx.Err() != nil {
		logger.Warn("Interrupted, output directory may be incomplete")
	}
	return nil
}
