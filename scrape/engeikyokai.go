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

// EngeiKyokaiScraper covers the rakugo association's hall schedules. Many
// entries have no detail link of their own, so the uniqueness key is the
// page URL plus the title instead of the URL alone.
type EngeiKyokaiScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	pages   []string
}

func NewEngeiKyokaiScraper(client *fetch.Client, logger zerolog.Logger) *EngeiKyokaiScraper {
	return &EngeiKyokaiScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.rakugo-kyokai.jp",
		pages:   []string{"/schedule/", "/koenkai/"},
	}
}

func (s *EngeiKyokaiScraper) Name() string { return "engei-kyokai" }

var engeiBlockSelectors = []string{
	"div.schedule-box",
	"li.koen-item",
	"table.schedule tr",
}

func (s *EngeiKyokaiScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Engei Kyokai scrape")
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

		blocks := selectBlocks(doc, engeiBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No schedule blocks on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, pageURL, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Engei Kyokai: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *EngeiKyokaiScraper) processBlock(block *goquery.Selection, pageURL string, events *arena, now time.Time) error {
	title := firstText(block, ".koen-title", "h3", ".title", "th")
	if !validTitle(title) {
		return nil
	}

	// Detail links are optional here; the schedule page itself is the record
	// of reference for most shows.
	url := pageURL
	if href := firstAttr(block, "href", "a"); href != "" {
		url = absoluteURL(s.baseURL, href)
	}

	dateText := firstText(block, ".date", "time", "td.date")
	venue := firstText(block, ".hall", ".venue", "td.hall")
	if venue == "" {
		venue = "都内演芸場"
	}
	priceText := firstText(block, ".price", "td.price")

	start, end := normalize.ParseDateRange(dateText, now)
	min, max := normalize.ParsePrices(priceText, normalize.DefaultPriceBand)

	ev := common.Event{
		EventID:    normalize.EventID("ek", url+"|"+title),
		TitleJA:    title,
		DateStart:  normalize.ISODateOr(start, now),
		VenueName:  venue,
		Area:       normalize.DetectArea(venue + " " + title),
		Category:   common.CategoryTheatreTraditional,
		Tags:       []string{"rakugo", "engei"},
		PriceMin:   min,
		PriceMax:   max,
		SourceURL:  url,
		SourceName: s.Name(),
		FetchedAt:  now,
	}
	if end != nil {
		ev.DateEnd = normalize.ISODate(*end)
	}

	if !events.add(url+"|"+title, ev) {
		s.logger.Debug().Msgf("Duplicate listing skipped: %s (%s)", title, url)
	}
	return nil
}
