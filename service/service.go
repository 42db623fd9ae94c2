package service

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ibento/common"
	"github.com/ibento/fetch"
	"github.com/ibento/runner"
	"github.com/ibento/translate"
)

type Config struct {
	Region   string `envconfig:"AWS_REGION" yaml:"region"`
	Database struct {
		Endpoint string `envconfig:"DYNAMODB_ENDPOINT" yaml:"endpoint"`
	} `yaml:"database"`
	Scrape struct {
		DelaySeconds int  `envconfig:"SCRAPE_DELAY_SECONDS" default:"3" yaml:"delay_seconds"`
		Persist      bool `envconfig:"SCRAPE_PERSIST" default:"true" yaml:"persist"`
	} `yaml:"scrape"`
}

// Service wires the store, the scraper runner and the translator together.
type Service struct {
	dbLayer    common.Db
	runner     *runner.Runner
	translator *translate.Translator
	persist    bool
	logger     zerolog.Logger
}

func NewService(cfg Config) *Service {
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339, NoColor: true})
	dbLayer, _ := common.NewDb(cfg.Database.Endpoint, cfg.Region, logger)

	client := fetch.NewClient(logger)
	run := runner.New(dbLayer, logger, time.Duration(cfg.Scrape.DelaySeconds)*time.Second)
	run.RegisterDefaults(client, logger)

	return &Service{
		dbLayer:    dbLayer,
		runner:     run,
		translator: translate.New(translate.NewCache(), logger),
		persist:    cfg.Scrape.Persist,
		logger:     logger,
	}
}

// RunAll scrapes the named sources, or every registered source when the
// list is empty.
func (s *Service) RunAll(sources []string) common.RunReport {
	return s.runner.RunAll(sources, s.persist)
}

func (s *Service) RunOne(source string) common.SourceOutcome {
	return s.runner.RunOne(source, s.persist)
}

// BackfillTranslations fills title_en on stored events that lack one.
// Translation failure is non-fatal; affected events are retried on the next
// backfill pass.
func (s *Service) BackfillTranslations() error {
	events, err := s.dbLayer.QueryEventsMissingEnglish()
	if err != nil {
		s.logger.Error().Msg(err.Error())
		return err
	}
	s.logger.Info().Msgf("Found %d events missing an English title", len(events))

	ctx := context.Background()
	for start := 0; start < len(events); start += 10 {
		end := start + 10
		if end > len(events) {
			end = len(events)
		}
		batch := events[start:end]

		titles := make([]string, len(batch))
		for i, ev := range batch {
			titles[i] = ev.TitleJA
		}

		translated, err := s.translator.TranslateTitles(ctx, titles)
		if err != nil {
			s.logger.Error().Msgf("Error translating batch at %d: %s", start, err.Error())
			continue
		}

		for i, title := range translated {
			if title == "" {
				continue
			}
			if err := s.dbLayer.UpdateEventEnglishTitle(batch[i].EventID, title); err != nil {
				s.logger.Error().Msgf("Error writing translation for %s: %s", batch[i].EventID, err.Error())
			}
		}
	}
	return nil
}

// QueryEvents returns one page of stored events plus the total match count.
func (s *Service) QueryEvents(filters common.EventFilters) ([]common.Event, int, error) {
	return s.dbLayer.QueryEvents(filters)
}

// ListFilterValues returns the distinct stored values of area, category or
// source_name, for building filter choices.
func (s *Service) ListFilterValues(field string) ([]string, error) {
	return s.dbLayer.ListDistinct(field)
}

// Purge drops events whose run has ended.
func (s *Service) Purge() error {
	s.logger.Info().Msg("Purging ended events")
	return s.dbLayer.PurgeEndedEvents(time.Now())
}

func (s *Service) CreateTables() error {
	if err := s.dbLayer.CreateEventsTable(); err != nil {
		s.logger.Fatal().Msgf("createEventsTable failed: %v", err)
	}
	s.logger.Info().Msg("Events Table is ready")
	return nil
}
