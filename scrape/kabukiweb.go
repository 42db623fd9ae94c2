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

// kabukiVenueCities maps the known kabuki theatres to their cities. This is
// more precise than generic area detection and is consulted first.
var kabukiVenueCities = []struct {
	Venue string
	City  string
}{
	{"歌舞伎座", common.AreaTokyo},
	{"Kabukiza", common.AreaTokyo},
	{"新橋演舞場", common.AreaTokyo},
	{"Shimbashi Embujo", common.AreaTokyo},
	{"国立劇場", common.AreaTokyo},
	{"南座", common.AreaKyoto},
	{"Minamiza", common.AreaKyoto},
	{"大阪松竹座", common.AreaOsaka},
	{"Shochikuza", common.AreaOsaka},
	{"博多座", common.AreaFukuoka},
	{"Hakataza", common.AreaFukuoka},
	{"御園座", common.AreaNagoya},
	{"Misonoza", common.AreaNagoya},
}

type KabukiWebScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	pages   []string
}

func NewKabukiWebScraper(client *fetch.Client, logger zerolog.Logger) *KabukiWebScraper {
	return &KabukiWebScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.kabukiweb.net",
		// The calendar view repeats part of the schedule page; in-run dedup
		// collapses the overlap.
		pages: []string{"/theatres/schedule/", "/calendar/"},
	}
}

func (s *KabukiWebScraper) Name() string { return "kabuki-web" }

var kabukiBlockSelectors = []string{
	"div.performance-item",
	"li.schedule-item",
	"section.theatre article",
}

func (s *KabukiWebScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Kabuki Web scrape")
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

		blocks := selectBlocks(doc, kabukiBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No performance blocks on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Kabuki Web: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *KabukiWebScraper) processBlock(block *goquery.Selection, events *arena, now time.Time) error {
	title := firstText(block, ".performance-title", "h2", "h3")
	if !validTitle(title) {
		return nil
	}
	href := firstAttr(block, "href", "a")
	if href == "" {
		return nil
	}
	url := absoluteURL(s.baseURL, href)

	// Month-long runs are listed as "11月1日〜25日" (end day only, same month).
	dateText := firstText(block, ".performance-date", ".date", "time")
	venue := firstText(block, ".theatre-name", ".venue")
	if venue == "" {
		venue = "歌舞伎座"
	}
	priceText := firstText(block, ".price")
	img := firstAttr(block, "src", "img")

	start, end := normalize.ParseDateRange(dateText, now)
	min, max := normalize.ParsePrices(priceText, normalize.DefaultPriceBand)

	ev := common.Event{
		EventID:    normalize.EventID("kb", url),
		TitleJA:    title,
		DateStart:  normalize.ISODateOr(start, now),
		VenueName:  venue,
		Area:       kabukiArea(venue + " " + title),
		Category:   common.CategoryTheatreTraditional,
		Tags:       []string{"kabuki", "traditional"},
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

// kabukiArea resolves the theatre dictionary first and only then falls back
// to generic detection.
func kabukiArea(text string) string {
	lowered := strings.ToLower(text)
	for _, vc := range kabukiVenueCities {
		if strings.Contains(lowered, strings.ToLower(vc.Venue)) {
			return vc.City
		}
	}
	return normalize.DetectArea(text)
}
