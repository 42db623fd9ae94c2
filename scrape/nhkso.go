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

// The orchestra's seating structure is stable, so when a concert page shows
// no price the usual E–S band is assumed instead of leaving it unknown.
const (
	nhksoDefaultPriceMin = 1600
	nhksoDefaultPriceMax = 9900
)

type NHKSymphonyScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	pages   []string
}

func NewNHKSymphonyScraper(client *fetch.Client, logger zerolog.Logger) *NHKSymphonyScraper {
	return &NHKSymphonyScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.nhkso.or.jp",
		pages:   []string{"/concert/schedule/"},
	}
}

func (s *NHKSymphonyScraper) Name() string { return "nhk-symphony" }

var nhksoBlockSelectors = []string{
	"div.concert-item",
	"li.schedule-list-item",
	"article.concert",
}

func (s *NHKSymphonyScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting NHK Symphony scrape")
	now := time.Now()
	events := newArena()
	var errs []string

	for _, page := range s.pages {
		pageURL := s.baseURL + page
		doc, err := s.client.Document(pageURL)
		if err != nil {
			errs = append(errs, fmt.Sprintf("fetch %s: %s", pageURL, err.Error()))
			continue
		}

		blocks := selectBlocks(doc, nhksoBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No concert blocks on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("NHK Symphony: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *NHKSymphonyScraper) processBlock(block *goquery.Selection, events *arena, now time.Time) error {
	title := firstText(block, ".concert-title", "h3", ".title")
	if !validTitle(title) {
		return nil
	}
	href := firstAttr(block, "href", "a")
	if href == "" {
		return nil
	}
	url := absoluteURL(s.baseURL, href)

	dateText := firstText(block, ".concert-date", ".date", "time")
	venue := firstText(block, ".hall", ".venue")
	if venue == "" {
		venue = "NHKホール"
	}
	priceText := firstText(block, ".price")
	program := firstRichText(block, ".program", ".description")

	start, end := normalize.ParseDateRange(dateText, now)
	min, max := normalize.ParsePrices(priceText, normalize.DefaultPriceBand)
	if min == nil {
		defMin, defMax := nhksoDefaultPriceMin, nhksoDefaultPriceMax
		min, max = &defMin, &defMax
	}

	// Home venues are all in Tokyo; detection only overrides on tour dates.
	area := normalize.DetectArea(venue + " " + title)
	if area == common.AreaJapan {
		area = common.AreaTokyo
	}

	ev := common.Event{
		EventID:       normalize.EventID("ns", url),
		TitleJA:       title,
		DescriptionJA: program,
		DateStart:     normalize.ISODateOr(start, now),
		VenueName:     venue,
		Area:          area,
		Category:      common.CategoryOrchestra,
		Tags:          []string{"classical", "orchestra"},
		PriceMin:      min,
		PriceMax:      max,
		SourceURL:     url,
		SourceName:    s.Name(),
		FetchedAt:     now,
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
