package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ibento/common"
	"github.com/ibento/fetch"
	"github.com/ibento/scrape"
)

// Store is the slice of the record store the runner needs.
type Store interface {
	UpsertEvent(common.Event) error
}

// Runner sequences the registered scrapers: strictly one source after
// another with a fixed delay in between, so the polled sites never see
// concurrent traffic from a run.
type Runner struct {
	scrapers map[string]scrape.Scraper
	order    []string
	store    Store
	logger   zerolog.Logger
	delay    time.Duration
}

func New(store Store, logger zerolog.Logger, delay time.Duration) *Runner {
	return &Runner{
		scrapers: map[string]scrape.Scraper{},
		store:    store,
		logger:   logger,
		delay:    delay,
	}
}

func (r *Runner) Register(s scrape.Scraper) {
	if _, dup := r.scrapers[s.Name()]; !dup {
		r.order = append(r.order, s.Name())
	}
	r.scrapers[s.Name()] = s
}

// RegisterDefaults wires up every production source.
func (r *Runner) RegisterDefaults(client *fetch.Client, logger zerolog.Logger) {
	r.Register(scrape.NewLawsonTicketScraper(client, logger))
	r.Register(scrape.NewKabukiWebScraper(client, logger))
	r.Register(scrape.NewEngeiKyokaiScraper(client, logger))
	r.Register(scrape.NewNHKSymphonyScraper(client, logger))
	r.Register(scrape.NewZeppScraper(client, logger))
	r.Register(scrape.NewGoTokyoScraper(client, logger))
	r.Register(scrape.NewAnimateScraper(client, logger))
	r.Register(scrape.NewArtBeatScraper(client, logger))
}

// Sources lists the registered source keys in registration order.
func (r *Runner) Sources() []string {
	return append([]string(nil), r.order...)
}

// RunAll executes the named sources (or every registered one when names is
// empty), optionally persisting each source's events as soon as it
// completes. Persistence failures count as errors and do not stop the batch.
func (r *Runner) RunAll(names []string, persist bool) common.RunReport {
	started := time.Now()
	report := common.RunReport{RunID: uuid.NewString()}

	keys := names
	if len(keys) == 0 {
		keys = r.order
	}

	for i, key := range keys {
		if i > 0 && r.delay > 0 {
			time.Sleep(r.delay)
		}
		outcome := r.RunOne(key, persist)
		report.Outcomes = append(report.Outcomes, outcome)
		report.TotalEvents += outcome.Found
		report.TotalErrors += len(outcome.Errors)
	}

	report.Duration = time.Since(started)
	r.logger.Info().Msgf("Run %s: %d events, %d errors across %d sources in %s",
		report.RunID, report.TotalEvents, report.TotalErrors, len(report.Outcomes), report.Duration)
	return report
}

// RunOne executes a single source. An unknown key or a failure that escapes
// the scraper's own isolation becomes a zero-event outcome with one error.
func (r *Runner) RunOne(key string, persist bool) common.SourceOutcome {
	started := time.Now()
	outcome := common.SourceOutcome{Source: key}

	s, ok := r.scrapers[key]
	if !ok {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("unknown source: %s", key))
		outcome.Duration = time.Since(started)
		return outcome
	}

	events, errs := r.safeExtract(s)
	outcome.Events = events
	outcome.Found = len(events)
	outcome.Errors = append(outcome.Errors, errs...)

	if persist && r.store != nil {
		for _, ev := range events {
			if err := r.store.UpsertEvent(ev); err != nil {
				outcome.Errors = append(outcome.Errors, fmt.Sprintf("upsert %s: %s", ev.EventID, err.Error()))
			}
		}
	}

	outcome.Duration = time.Since(started)
	r.logger.Info().Msgf("Source %s: %d events, %d errors in %s", key, outcome.Found, len(outcome.Errors), outcome.Duration)
	return outcome
}

// safeExtract guards against a scraper failure escaping its own per-block
// and per-page isolation.
func (r *Runner) safeExtract(s scrape.Scraper) (events []common.Event, errs []string) {
	defer func() {
		if rec := recover(); rec != nil {
			events = nil
			errs = []string{fmt.Sprintf("scraper %s panicked: %v", s.Name(), rec)}
		}
	}()
	return s.Extract()
}
