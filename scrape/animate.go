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

// animateStore is one of the chain's physical shops. Venue text that names
// no store exactly still resolves through the ward keywords (a bare 池袋
// means the flagship).
type animateStore struct {
	Name     string
	Address  string
	Area     string
	Keywords []string
}

var animateStores = []animateStore{
	{"アニメイト池袋本店", "東京都豊島区東池袋1-20-7", common.AreaTokyo, []string{"池袋", "ikebukuro"}},
	{"アニメイト渋谷", "東京都渋谷区宇田川町31-2", common.AreaTokyo, []string{"渋谷", "shibuya"}},
	{"アニメイト秋葉原", "東京都千代田区外神田4-3-2", common.AreaTokyo, []string{"秋葉原", "akihabara"}},
	{"アニメイト横浜ビブレ", "神奈川県横浜市西区南幸2-15-13", common.AreaYokohama, []string{"横浜", "yokohama"}},
	{"アニメイト大阪日本橋", "大阪府大阪市浪速区日本橋1-2-3", common.AreaOsaka, []string{"日本橋", "大阪", "osaka"}},
	{"アニメイト名古屋", "愛知県名古屋市中村区椿町18-4", common.AreaNagoya, []string{"名古屋", "nagoya"}},
	{"アニメイト福岡パルコ", "福岡県福岡市中央区天神2-11-1", common.AreaFukuoka, []string{"天神", "福岡", "fukuoka"}},
}

// Known franchises anywhere in the combined text flag the anime tag even
// when the listing itself avoids the word.
var animateFranchises = []string{
	"ワンピース", "one piece",
	"鬼滅の刃",
	"呪術廻戦",
	"ハイキュー",
	"チェンソーマン",
	"spy×family", "スパイファミリー",
	"推しの子",
	"ブルーロック",
	"ヒプノシスマイク",
	"初音ミク",
	"ポケモン", "pokemon",
	"プリキュア",
	"ジョジョ",
}

type AnimateScraper struct {
	client  *fetch.Client
	logger  zerolog.Logger
	baseURL string
	pages   []string
}

func NewAnimateScraper(client *fetch.Client, logger zerolog.Logger) *AnimateScraper {
	return &AnimateScraper{
		client:  client,
		logger:  logger,
		baseURL: "https://www.animate.co.jp",
		pages:   []string{"/event/", "/onlyshop/"},
	}
}

func (s *AnimateScraper) Name() string { return "animate" }

var animateBlockSelectors = []string{
	"li.event-list-item",
	"div.event-box",
	"article.event",
}

func (s *AnimateScraper) Extract() ([]common.Event, []string) {
	s.logger.Debug().Msg("Starting Animate scrape")
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

		blocks := selectBlocks(doc, animateBlockSelectors)
		if blocks == nil {
			s.logger.Debug().Msgf("No event blocks on %s", pageURL)
			continue
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			if err := runBlock(func() error { return s.processBlock(block, events, now) }); err != nil {
				s.logger.Debug().Msgf("Skipping block on %s: %s", pageURL, err.Error())
			}
		})
	}

	s.logger.Info().Msgf("Animate: %d events, %d errors", len(events.list()), len(errs))
	return events.list(), errs
}

func (s *AnimateScraper) processBlock(block *goquery.Selection, events *arena, now time.Time) error {
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
	venueText := firstText(block, ".shop", ".place", ".venue")
	description := firstRichText(block, ".event-summary", "p")
	img := firstAttr(block, "src", "img")

	start, end := normalize.ParseDateRange(dateText, now)
	combined := title + " " + description + " " + venueText

	ev := common.Event{
		EventID:       normalize.EventID("am", url),
		TitleJA:       title,
		DescriptionJA: description,
		DateStart:     normalize.ISODateOr(start, now),
		Category:      common.CategoryAnime,
		Tags:          []string{"pop-up"},
		SourceURL:     url,
		SourceName:    s.Name(),
		ImageURL:      img,
		FetchedAt:     now,
	}
	if end != nil {
		ev.DateEnd = normalize.ISODate(*end)
	}

	if store := matchAnimateStore(combined); store != nil {
		ev.VenueName = store.Name
		ev.VenueAddress = store.Address
		ev.Area = store.Area
	} else {
		ev.VenueName = venueText
		if ev.VenueName == "" {
			ev.VenueName = "アニメイト店舗"
		}
		ev.Area = normalize.DetectArea(combined)
	}

	if franchise := matchFranchise(combined); franchise != "" {
		ev.Tags = append(ev.Tags, "anime", franchise)
	}

	if !events.add(url, ev) {
		s.logger.Debug().Msgf("Duplicate listing skipped: %s", url)
	}
	return nil
}

// matchAnimateStore tries exact store names before the broader ward
// keywords.
func matchAnimateStore(text string) *animateStore {
	lowered := strings.ToLower(text)
	for i := range animateStores {
		if strings.Contains(lowered, strings.ToLower(animateStores[i].Name)) {
			return &animateStores[i]
		}
	}
	for i := range animateStores {
		for _, kw := range animateStores[i].Keywords {
			if strings.Contains(lowered, kw) {
				return &animateStores[i]
			}
		}
	}
	return nil
}

func matchFranchise(text string) string {
	lowered := strings.ToLower(text)
	for _, f := range animateFranchises {
		if strings.Contains(lowered, f) {
			return f
		}
	}
	return ""
}
