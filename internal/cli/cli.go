package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/event-ratings/internal/batch"
	"github.com/pfrederiksen/event-ratings/internal/config"
	"github.com/pfrederiksen/event-ratings/internal/event"
	"github.com/pfrederiksen/event-ratings/internal/logger"
	"github.com/pfrederiksen/event-ratings/internal/metrics"
	"github.com/pfrederiksen/event-ratings/internal/scraper"
	"github.com/pfrederiksen/event-ratings/internal/source"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var flagConfig string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-ratings [urls-file]",
		Short: "Rank conference events by audience rating",
		Long: `A CLI tool that fetches conference session pages, extracts each session's
title and audience rating, and prints the sessions ranked from highest to lowest rating.

Sessions whose page cannot be fetched or parsed are still listed, with an empty
name and a rating of 0.

The URL list is read from the [urls-file] argument or from --urls, but not both.
When given, the argument takes precedence over EVENT_RATINGS_URLS and the config
file's urls key.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRatings,
	}

	// Define flags; values are resolved through viper so env and config file apply too
	flags := cmd.Flags()
	flags.StringVar(&flagConfig, "config", "", "Config file (YAML)")
	flags.String("urls", source.DefaultPath, "File with one event URL per line")
	flags.Int("workers", batch.DefaultWorkers, "Number of pages fetched concurrently")
	flags.Duration("timeout", scraper.Timeout, "Per-request timeout (0 disables)")
	flags.Int("retries", 0, "Retries after a transient fetch failure")
	flags.Duration("retry-wait", scraper.RetryWait, "Initial wait between retries")
	flags.String("user-agent", scraper.UserAgent, "User-Agent header sent with every request")
	flags.String("title-selector", scraper.DefaultTitleSelector, "CSS selector for the event title")
	flags.String("rating-selector", scraper.DefaultRatingSelector, "CSS selector for the rating summary")
	flags.String("format", config.FormatTable, "Output format: table or json")
	flags.Bool("verbose", false, "Show review counts and failed pages")
	flags.Bool("progress", false, "Show a progress bar on stderr")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")

	return cmd
}

// runRatings is the main command logic
func runRatings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.New(), flagConfig, cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(args) == 1 {
		if cmd.Flags().Changed("urls") {
			return fmt.Errorf("urls file given both as argument (%s) and --urls", args[0])
		}
		cfg.URLsFile = args[0]
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	// Logs and the progress bar share stderr and are written from worker goroutines.
	stderr := logger.Locked(cmd.ErrOrStderr())
	runID := uuid.NewString()
	log := logger.New(level, stderr).With(logger.Fields{"run_id": runID})
	defer log.Sync() // nolint:errcheck

	urls, err := source.Load(cfg.URLsFile)
	if err != nil {
		return fmt.Errorf("loading urls: %w", err)
	}

	extractor, err := scraper.NewExtractor(scraper.Options{
		TitleSelector:  cfg.TitleSelector,
		RatingSelector: cfg.RatingSelector,
	})
	if err != nil {
		return fmt.Errorf("initializing extractor: %w", err)
	}

	m := metrics.New()
	fetcher := scraper.New(scraper.Config{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.Retries,
		RetryWait:  cfg.RetryWait,
		Observer:   m,
	})
	opts := batch.Options{
		Workers: cfg.Workers,
		Metrics: m,
		Logger:  log,
	}

	var bar *progressBar
	if cfg.Progress && len(urls) > 0 {
		bar = newProgressBar(stderr, len(urls))
		opts.OnDone = bar.Increment
	}

	events := event.NewEvents(urls)

	log.Info("Starting run", logger.Fields{
		"urls_file": cfg.URLsFile,
		"events":    len(events),
		"workers":   cfg.Workers,
	})

	start := time.Now()
	summary := batch.NewRunner(fetcher, extractor, opts).Run(cmd.Context(), events)
	bar.Finish()

	log.Info("Run finished", logger.Fields{
		"events":          summary.Total,
		"succeeded":       summary.Succeeded,
		"failed":          summary.Failed,
		"failed_by_stage": summary.FailedByStage(),
		"duration_ms":     time.Since(start).Milliseconds(),
	})

	result := &OutputResult{
		RunID:      runID,
		CheckedAt:  time.Now().UTC(),
		EventCount: len(events),
		Failed:     summary.Failed,
		Events:     event.Rank(events),
		Failures:   failureOutputs(summary.Failures),
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, OutputFormat(cfg.Format), cfg.Verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			// The report is already out; a metrics failure only warrants a warning.
			log.Warn("Writing metrics failed", logger.Fields{
				"path":  cfg.MetricsTextfile,
				"error": err,
			})
		}
	}

	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
