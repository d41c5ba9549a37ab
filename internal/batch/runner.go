package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/event-ratings/internal/event"
	"github.com/pfrederiksen/event-ratings/internal/logger"
	"github.com/pfrederiksen/event-ratings/internal/metrics"
	"github.com/pfrederiksen/event-ratings/internal/scraper"
)

// DefaultWorkers is the reference pool size
const DefaultWorkers = 4

// StagePanic labels tasks that panicked instead of returning an error
const StagePanic = "panic"

// ErrTaskPanic wraps a value recovered from a panicking task
var ErrTaskPanic = errors.New("task panicked")

// Fetcher retrieves the body of an event page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor pulls event fields out of a page body
type Extractor interface {
	Extract(body string) (scraper.Fields, error)
}

// Options configures a Runner
type Options struct {
	Workers int
	Metrics *metrics.Metrics
	Logger  *logger.Logger

	// OnDone is called once per finished task, possibly from several goroutines at once.
	OnDone func()
}

// Runner drives fetch and extraction for a batch of events on a fixed-size pool
type Runner struct {
	fetcher   Fetcher
	extractor Extractor
	workers   int
	metrics   *metrics.Metrics
	log       *logger.Logger
	onDone    func()
}

// Failure records why one event kept its default fields
type Failure struct {
	URL   string
	Stage string
	Err   error
}

// Summary reports the outcome of a Run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// NewRunner creates a Runner. A non-positive worker count falls back to DefaultWorkers.
func NewRunner(fetcher Fetcher, extractor Extractor, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Runner{
		fetcher:   fetcher,
		extractor: extractor,
		workers:   opts.Workers,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		onDone:    opts.OnDone,
	}
}

// Run fetches and extracts every event, writing results into the events in place.
// It returns only after every task has finished. A failed task leaves its event
// with default fields and never affects the others.
func (r *Runner) Run(ctx context.Context, events []*event.Event) Summary {
	r.metrics.SetEvents(len(events))

	// Each slot is written by exactly one task and read only after Wait.
	errs := make([]error, len(events))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, evt := range events {
		i, evt := i, evt
		g.Go(func() error {
			errs[i] = r.runTask(ctx, evt)
			if r.onDone != nil {
				r.onDone()
			}
			return nil
		})
	}
	_ = g.Wait()

	return summarize(events, errs)
}

func (r *Runner) runTask(ctx context.Context, evt *event.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, rec)
		}
		r.report(evt, err)
	}()

	body, err := r.fetcher.Fetch(ctx, evt.URL)
	if err != nil {
		return err
	}

	fields, err := r.extractor.Extract(body)
	if err != nil {
		return err
	}

	evt.Populate(fields.Name, fields.Rating, fields.ReviewCount)
	return nil
}

func (r *Runner) report(evt *event.Event, err error) {
	stage := stageOf(err)
	r.metrics.ObserveTask(stage)

	if err != nil {
		r.log.Warn("Event extraction failed", logger.Fields{
			"url":   evt.URL,
			"stage": stage,
			"error": err,
		})
		return
	}

	r.log.Debug("Event extracted", logger.Fields{
		"url":     evt.URL,
		"name":    evt.Name,
		"rating":  evt.Rating,
		"reviews": evt.ReviewCount,
	})
}

func stageOf(err error) string {
	if errors.Is(err, ErrTaskPanic) {
		return StagePanic
	}
	return scraper.Stage(err)
}

func summarize(events []*event.Event, errs []error) Summary {
	summary := Summary{Total: len(events)}
	for i, err := range errs {
		if err == nil {
			summary.Succeeded++
			continue
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{
			URL:   events[i].URL,
			Stage: stageOf(err),
			Err:   err,
		})
	}
	return summary
}

// FailedByStage counts failures per stage
func (s Summary) FailedByStage() map[string]int {
	counts := make(map[string]int)
	for _, f := range s.Failures {
		counts[f.Stage]++
	}
	return counts
}
