package scrape

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/ibento/common"
	"github.com/ibento/fetch"
	"github.com/ibento/normalize"
)

// lawsonCategory is one fixed genre path on the ticketing aggregator. Each
// record is tagged with its genre label plus the on-sale marker.
type lawsonCategory struct {
	Path     string
	Label    string
	Category string
}

type LawsonTicketScraper struct {
	client     *fetch.Client
	logger     zerolog.Logger
	baseURL    string
	categories []lawsonCategory
	pause      time.Duration
}

func NewLawsonTicketScraper(client *fetch.Client, logger zerolog.Logger) *LawsonTicketScraper {
	return &LawsonTicketScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://l-tike.com",
		categories: []lawsonCategory{
			{"/genre/music/", "music", common.CategoryConcert},
			{"/genre/classic/", "classical", common.CategoryOrchestra},
			{"/genre/stage/", "stage", common.CategoryStage},
			{"/genre/musical/", "musical", common.CategoryMusical},
			{"/genre/rakugo/", "rakugo", common.CategoryTheatreTraditional},
			{"/genre/anime/", "anime", common.CategoryAnime},
		},
		pause: 500 * time.Millisecond,
	}
}

func (s *LawsonTicketScraper) Name() string { return "lawson-ticket" }

var lawsonBlockSelectors = []string{
	"li.event-list-item",
	"div.ticket-box li",
	"article.event",
}

func (s *LawsonTicketScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Lawson Ticket scrape")
	now := time.Now()
	events := newArena()
	var errs []string

	for i, cat := range s.categories {
		if i > 0 {
			time.Sleep(s.pause)
		}
		pageURL := s.baseURL + cat.Path
		doc, err := s.client.Document(pageURL)
		if err != nil {
			errs = append(errs, fmt.Sprintf("fetch %s: %s", pageURL, err.Error()))
			continue
		}

		blocks := selectBlocks(doc, lawsonBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No event blocks on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, cat, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Lawson Ticket: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *LawsonTicketScraper) processBlock(block *goquery.Selection, cat lawsonCategory, events *arena, now time.Time) error {
	title := firstText(block, ".event-title", "h3", ".title")
	if !validTitle(title) {
		return nil
	}
	href := firstAttr(block, "href", "a")
	if href == "" {
		return nil
	}
	url := absoluteURL(s.baseURL, href)

	dateText := firstText(block, ".event-date", ".date", "time")
	venue := firstText(block, ".venue", ".place", ".hall")
	if venue == "" {
		venue = "会場未定（ローソンチケット）"
	}
	priceText := firstText(block, ".price", ".ticket-price")
	img := firstAttr(block, "src", "img")

	start, end := normalize.ParseDateRange(dateText, now)
	min, max := normalize.ParsePrices(priceText, normalize.DefaultPriceBand)
	combined := title + " " + venue

	ev := common.Event{
		EventID:    normalize.EventID("lt", url),
		TitleJA:    title,
		DateStart:  normalize.ISODateOr(start, now),
		VenueName:  venue,
		Area:       normalize.DetectArea(combined),
		Category:   cat.Category,
		Tags:       []string{cat.Label, "on-sale"},
		PriceMin:   min,
		PriceMax:   max,
		SourceURL:  url,
		SourceName: s.Name(),
		ImageURL:   img,
		FetchedAt:  now,
	}
	if end != nil {
		ev.DateEnd = normalize.ISODate(*end)
	}
	if normalize.MostlyLatin(title) {
		ev.TitleEN = title
	}

	if !events.add(url, ev) {
		s.logger.Debug().Msgf("Duplicate listing skipped: %s", url)
	}
	return nil
}
