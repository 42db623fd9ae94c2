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

// GoTokyoScraper walks the tourism board's event listings. Seasonal picks
// and the main index overlap heavily, which in-run dedup absorbs.
type GoTokyoScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	pages   []string
}

func NewGoTokyoScraper(client *fetch.Client, logger zerolog.Logger) *GoTokyoScraper {
	return &GoTokyoScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.gotokyo.org",
		pages:   []string{"/jp/event/", "/jp/event/seasonal/"},
	}
}

func (s *GoTokyoScraper) Name() string { return "go-tokyo" }

var gotokyoBlockSelectors = []string{
	"li.event-card",
	"div.card-event",
	"article.event",
}

func (s *GoTokyoScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Go Tokyo scrape")
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

		blocks := selectBlocks(doc, gotokyoBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No event cards on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Go Tokyo: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *GoTokyoScraper) processBlock(block *goquery.Selection, events *arena, now time.Time) error {
	title := firstText(block, ".event-title", "h3", ".title")
	if !validTitle(title) {
		return nil
	}
	href := firstAttr(block, "href", "a")
	if href == "" {
		return nil
	}
	url := absoluteURL(s.baseURL, href)

	dateText := firstText(block, ".event-period", ".date", "time")
	venue := firstText(block, ".event-place", ".place", ".venue")
	if venue == "" {
		venue = "都内各所"
	}
	description := firstRichText(block, ".event-summary", ".summary", "p")
	img := firstAttr(block, "src", "img")

	start, end := normalize.ParseDateRange(dateText, now)
	combined := title + " " + description + " " + venue

	// A tourism-board listing without a recognizable place name is still in
	// the capital.
	area := normalize.DetectArea(combined)
	if area == common.AreaJapan {
		area = common.AreaTokyo
	}

	ev := common.Event{
		EventID:       normalize.EventID("gt", url),
		TitleJA:       title,
		DescriptionJA: description,
		DateStart:     normalize.ISODateOr(start, now),
		VenueName:     venue,
		Area:          area,
		Category:      normalize.DetectCategory(combined),
		Tags:          []string{"tourism"},
		SourceURL:     url,
		SourceName:    s.Name(),
		ImageURL:      img,
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
