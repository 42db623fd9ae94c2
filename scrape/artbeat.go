package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/ibento/common"
	"github.com/ibento/fetch"
	"github.com/ibento/normalize"
)

// ArtBeatScraper walks the gallery aggregator's Japanese listing first and
// its English variant second. An English entry whose canonical URL was seen
// on the Japanese page back-fills that record's English title in place; this
// is the one case where an already-emitted record is mutated.
type ArtBeatScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	jaPage  string
	enPage  string
}

func NewArtBeatScraper(client *fetch.Client, logger zerolog.Logger) *ArtBeatScraper {
	return &ArtBeatScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.tokyoartbeat.com",
		jaPage:  "/events/latest",
		enPage:  "/en/events/latest",
	}
}

func (s *ArtBeatScraper) Name() string { return "art-beat" }

var artbeatBlockSelectors = []string{
	"li.event-listing",
	"div.event-card",
	"article.event",
}

func (s *ArtBeatScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Art Beat scrape")
	now := time.Now()
	events := newArena()
	var errs []string

	for _, page := range []struct {
		path    string
		english bool
	}{
		{s.jaPage, false},
		{s.enPage, true},
	} {
		pageURL := s.baseURL + page.path
		doc, err := s.client.Document(pageURL)
		if err != nil {
			errs = append(errs, fmt.Sprintf("fetch %s: %s", pageURL, err.Error()))
			continue
		}

		blocks := selectBlocks(doc, artbeatBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No event listings on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, page.english, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Art Beat: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *ArtBeatScraper) processBlock(block *goquery.Selection, english bool, events *arena, now time.Time) error {
	title := firstText(block, ".event-title", "h3", ".title")
	if !validTitle(title) {
		return nil
	}
	href := firstAttr(block, "href", "a")
	if href == "" {
		return nil
	}
	url := canonicalArtBeatURL(absoluteURL(s.baseURL, href))

	// Same exhibition seen on the other language's page: fill the gap and
	// move on instead of emitting a duplicate.
	if i, ok := events.get(url); ok {
		if english && events.events[i].TitleEN == "" {
			events.events[i].TitleEN = title
			s.logger.Debug().Msgf("Back-filled English title for %s", url)
		}
		return nil
	}

	dateText := firstText(block, ".event-period", ".date", "time")
	venue := firstText(block, ".gallery", ".venue", ".place")
	if venue == "" {
		venue = "ギャラリー"
	}
	img := firstAttr(block, "src", "img")

	start, end := normalize.ParseDateRange(dateText, now)

	ev := common.Event{
		EventID:    normalize.EventID("ab", url),
		DateStart:  normalize.ISODateOr(start, now),
		VenueName:  venue,
		Area:       normalize.DetectArea(venue + " " + title),
		Category:   common.CategoryArt,
		Tags:       []string{"exhibition"},
		SourceURL:  url,
		SourceName: s.Name(),
		ImageURL:   img,
		FetchedAt:  now,
	}
	if end != nil {
		ev.DateEnd = normalize.ISODate(*end)
	}
	if english {
		ev.TitleEN = title
	} else {
		ev.TitleJA = title
		if normalize.MostlyLatin(title) {
			ev.TitleEN = title
		}
	}

	events.add(url, ev)
	return nil
}

// canonicalArtBeatURL strips the language segment so both page variants
// agree on one dedup key.
func canonicalArtBeatURL(url string) string {
	return strings.Replace(url, "/en/", "/", 1)
}
