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

// zeppVenue ties a hall in the chain to its schedule path and street address.
type zeppVenue struct {
	Name    string
	Slug    string
	Address string
	Area    string
}

var zeppVenues = []zeppVenue{
	{"Zepp Haneda", "haneda", "東京都大田区羽田空港1-1-4", common.AreaTokyo},
	{"Zepp DiverCity", "divercity", "東京都江東区青海1-1-10", common.AreaTokyo},
	{"Zepp Shinjuku", "shinjuku", "東京都新宿区歌舞伎町1-29-1", common.AreaTokyo},
	{"Zepp Yokohama", "yokohama", "神奈川県横浜市西区みなとみらい4-3-6", common.AreaYokohama},
	{"Zepp Nagoya", "nagoya", "愛知県名古屋市中村区平池町4-60-7", common.AreaNagoya},
	{"Zepp Namba", "namba", "大阪府大阪市浪速区敷津東2-1-39", common.AreaOsaka},
	{"Zepp Fukuoka", "fukuoka", "福岡県福岡市中央区地行浜2-2-1", common.AreaFukuoka},
	{"Zepp Sapporo", "sapporo", "北海道札幌市中央区南9条西4-4-1", common.AreaSapporo},
}

// Tickets at these halls sit between one and fifty thousand yen; anything
// outside that band in the price text is capacity or a phone number.
var zeppPriceBand = normalize.PriceBand{Floor: 1000, Ceil: 50000}

type ZeppScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	venues  []zeppVenue
}

func NewZeppScraper(client *fetch.Client, logger zerolog.Logger) *ZeppScraper {
	return &ZeppScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.zepp.co.jp",
		venues:  zeppVenues,
	}
}

func (s *ZeppScraper) Name() string { return "zepp" }

var zeppBlockSelectors = []string{
	"div.schedule-item",
	"li.live-item",
	"article.event",
}

func (s *ZeppScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Zepp scrape")
	now := time.Now()
	events := newArena()
	var errs []string

	for _, venue := range s.venues {
		pageURL := s.baseURL + "/" + venue.Slug + "/schedule/"
		doc, err := s.client.Document(pageURL)
		if err != nil {
			errs = append(errs, fmt.Sprintf("fetch %s: %s", pageURL, err.Error()))
			continue
		}

		blocks := selectBlocks(doc, zeppBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No schedule blocks on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, venue, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Zepp: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *ZeppScraper) processBlock(block *goquery.Selection, venue zeppVenue, events *arena, now time.Time) error {
	title := firstText(block, ".live-title", "h3", ".title")
	if !validTitle(title) {
		return nil
	}
	href := firstAttr(block, "href", "a")
	if href == "" {
		return nil
	}
	url := absoluteURL(s.baseURL, href)

	dateText := firstText(block, ".live-date", ".date", "time")
	priceText := firstText(block, ".price", ".ticket")
	img := firstAttr(block, "src", "img")

	start, end := normalize.ParseDateRange(dateText, now)
	min, max := normalize.ParsePrices(priceText, zeppPriceBand)

	category := normalize.DetectCategory(title)
	if category == common.CategoryEvent {
		// A live house booking with no recognizable keywords is still a gig.
		category = common.CategoryConcert
	}

	ev := common.Event{
		EventID:      normalize.EventID("zp", url),
		TitleJA:      title,
		DateStart:    normalize.ISODateOr(start, now),
		VenueName:    venue.Name,
		VenueAddress: venue.Address,
		Area:         venue.Area,
		Category:     category,
		Tags:         []string{"live-house"},
		PriceMin:     min,
		PriceMax:     max,
		SourceURL:    url,
		SourceName:   s.Name(),
		ImageURL:     img,
		FetchedAt:    now,
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
