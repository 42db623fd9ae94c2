package scrape

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibento/common"
	"github.com/ibento/fetch"
)

func fixtureServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient() *fetch.Client {
	return fetch.NewClient(zerolog.Nop())
}

func TestGoTokyoSkipsMalformedBlocks(t *testing.T) {
	page := `<html><body>
	<li class="event-card">
		<h3 class="event-title">隅田川花火大会</h3>
		<a href="/jp/event/sumida"></a>
		<span class="event-period">2025年7月26日</span>
		<span class="event-place">隅田川</span>
	</li>
	<li class="event-card">
		<a href="/jp/event/broken"></a>
		<span class="event-period">2025年8月1日</span>
	</li>
	<li class="event-card">
		<h3 class="event-title">神宮外苑いちょう祭り</h3>
		<a href="/jp/event/icho"></a>
		<span class="event-period">2025年11月15日〜12月1日</span>
	</li>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/jp/event/": page})

	s := NewGoTokyoScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/jp/event/"}

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 2)
	assert.Equal(t, "隅田川花火大会", events[0].TitleJA)
	assert.Equal(t, "2025-07-26", events[0].DateStart)
	assert.Equal(t, common.CategoryFestival, events[0].Category)
	assert.Equal(t, "2025-11-15", events[1].DateStart)
	assert.Equal(t, "2025-12-01", events[1].DateEnd)
}

func TestGoTokyoDedupsSameURL(t *testing.T) {
	page := `<html><body>
	<li class="event-card"><h3 class="event-title">東京音楽祭</h3><a href="/jp/event/fes"></a></li>
	<li class="event-card"><h3 class="event-title">東京音楽祭（再掲）</h3><a href="/jp/event/fes"></a></li>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/jp/event/": page})

	s := NewGoTokyoScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/jp/event/"}

	events, _ := s.Extract()
	require.Len(t, events, 1)
	assert.Equal(t, srv.URL+"/jp/event/fes", events[0].SourceURL)
}

func TestEngeiContinuesPastFailedPage(t *testing.T) {
	page := `<html><body>
	<div class="schedule-box">
		<h3 class="koen-title">五月上席 昼の部</h3>
		<span class="date">2025年5月1日〜10日</span>
		<span class="hall">鈴本演芸場</span>
		<span class="price">3,000円</span>
	</div>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/schedule/": page})

	s := NewEngeiKyokaiScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/missing/", "/schedule/"}

	events, errs := s.Extract()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "/missing/")
	require.Len(t, events, 1)
	assert.Equal(t, "五月上席 昼の部", events[0].TitleJA)
	assert.Equal(t, "2025-05-01", events[0].DateStart)
	assert.Equal(t, "2025-05-10", events[0].DateEnd)
	assert.Equal(t, common.CategoryTheatreTraditional, events[0].Category)
	require.NotNil(t, events[0].PriceMin)
	assert.Equal(t, 3000, *events[0].PriceMin)
	// No detail link: the record points at the schedule page itself.
	assert.Equal(t, srv.URL+"/schedule/", events[0].SourceURL)
}

func TestEngeiDedupsByURLAndTitle(t *testing.T) {
	page := `<html><body>
	<div class="schedule-box"><h3 class="koen-title">夜の部</h3></div>
	<div class="schedule-box"><h3 class="koen-title">夜の部</h3></div>
	<div class="schedule-box"><h3 class="koen-title">昼の部</h3></div>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/schedule/": page})

	s := NewEngeiKyokaiScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/schedule/"}

	events, _ := s.Extract()
	assert.Len(t, events, 2)
}

func TestKabukiVenueDictionaryBeatsGenericDetection(t *testing.T) {
	page := `<html><body>
	<div class="performance-item">
		<h2 class="performance-title">吉例顔見世興行</h2>
		<a href="/performances/kaomise"></a>
		<span class="performance-date">2025年11月1日〜25日</span>
		<span class="theatre-name">南座</span>
	</div>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/theatres/schedule/": page})

	s := NewKabukiWebScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/theatres/schedule/"}

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 1)
	// 南座 is Kyoto even though nothing else in the text says so.
	assert.Equal(t, common.AreaKyoto, events[0].Area)
	assert.Equal(t, "2025-11-01", events[0].DateStart)
	assert.Equal(t, "2025-11-25", events[0].DateEnd)
	assert.Equal(t, common.CategoryTheatreTraditional, events[0].Category)
}

func TestZeppVenueMappingAndLatinTitle(t *testing.T) {
	page := `<html><body>
	<div class="schedule-item">
		<h3 class="live-title">THE MIDNIGHT PARADE WORLD TOUR</h3>
		<a href="/haneda/schedule/20251101"></a>
		<span class="live-date">2025年11月1日</span>
		<span class="price">ADV ¥7,500 / 整理番号 150</span>
	</div>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/haneda/schedule/": page})

	s := NewZeppScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.venues = []zeppVenue{{"Zepp Haneda", "haneda", "東京都大田区羽田空港1-1-4", common.AreaTokyo}}

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "Zepp Haneda", ev.VenueName)
	assert.Equal(t, "東京都大田区羽田空港1-1-4", ev.VenueAddress)
	assert.Equal(t, common.AreaTokyo, ev.Area)
	// Latin-script title doubles as its own English value.
	assert.Equal(t, ev.TitleJA, ev.TitleEN)
	assert.Equal(t, common.CategoryConcert, ev.Category)
	// 150 is below the venue band's floor and must not become the minimum.
	require.NotNil(t, ev.PriceMin)
	assert.Equal(t, 7500, *ev.PriceMin)
	assert.Equal(t, 7500, *ev.PriceMax)
}

func TestLawsonTicketCategoryPaths(t *testing.T) {
	music := `<html><body><li class="event-list-item">
		<h3 class="event-title">スプリングライブ2026</h3>
		<a href="/order/music123"></a>
		<span class="event-date">2026年3月14日</span>
		<span class="venue">東京・日本武道館</span>
		<span class="price">¥6,800〜¥12,000</span>
	</li></body></html>`
	rakugo := `<html><body><li class="event-list-item">
		<h3 class="event-title">新春寄席</h3>
		<a href="/order/rakugo55"></a>
	</li></body></html>`
	srv := fixtureServer(t, map[string]string{
		"/genre/music/":  music,
		"/genre/rakugo/": rakugo,
	})

	s := NewLawsonTicketScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pause = 0
	s.categories = []lawsonCategory{
		{"/genre/music/", "music", common.CategoryConcert},
		{"/genre/rakugo/", "rakugo", common.CategoryTheatreTraditional},
	}

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 2)

	assert.Equal(t, common.CategoryConcert, events[0].Category)
	assert.Equal(t, []string{"music", "on-sale"}, events[0].Tags)
	require.NotNil(t, events[0].PriceMin)
	assert.Equal(t, 6800, *events[0].PriceMin)
	assert.Equal(t, 12000, *events[0].PriceMax)
	assert.Equal(t, common.AreaTokyo, events[0].Area) // 日本武道館 carries no city; title+venue detection

	assert.Equal(t, common.CategoryTheatreTraditional, events[1].Category)
	assert.Equal(t, []string{"rakugo", "on-sale"}, events[1].Tags)
}

func TestAnimateStoreAndFranchiseDetection(t *testing.T) {
	page := `<html><body>
	<li class="event-list-item">
		<h3 class="event-title">鬼滅の刃 コラボフェア</h3>
		<a href="/event/kimetsu-fair"></a>
		<span class="event-period">2025年9月1日〜30日</span>
		<span class="shop">池袋の店舗にて</span>
	</li>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/event/": page})

	s := NewAnimateScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/event/"}

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 1)
	ev := events[0]
	// Ward keyword resolves to the flagship store with its address.
	assert.Equal(t, "アニメイト池袋本店", ev.VenueName)
	assert.Equal(t, "東京都豊島区東池袋1-20-7", ev.VenueAddress)
	assert.Equal(t, common.AreaTokyo, ev.Area)
	assert.Equal(t, common.CategoryAnime, ev.Category)
	assert.Contains(t, ev.Tags, "anime")
	assert.Contains(t, ev.Tags, "鬼滅の刃")
}

func TestArtBeatBilingualMerge(t *testing.T) {
	ja := `<html><body>
	<li class="event-listing">
		<h3 class="event-title">現代写真の地平</h3>
		<a href="/events/2025/contemporary-photo"></a>
		<span class="event-period">2025年10月1日〜11月30日</span>
		<span class="gallery">東京都写真美術館</span>
	</li>
	</body></html>`
	en := `<html><body>
	<li class="event-listing">
		<h3 class="event-title">Horizons of Contemporary Photography</h3>
		<a href="/en/events/2025/contemporary-photo"></a>
	</li>
	<li class="event-listing">
		<h3 class="event-title">Small Sculpture Annual</h3>
		<a href="/en/events/2025/sculpture-annual"></a>
	</li>
	</body></html>`
	srv := fixtureServer(t, map[string]string{
		"/events/latest":    ja,
		"/en/events/latest": en,
	})

	s := NewArtBeatScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 2)

	merged := events[0]
	assert.Equal(t, "現代写真の地平", merged.TitleJA)
	assert.Equal(t, "Horizons of Contemporary Photography", merged.TitleEN)
	assert.Equal(t, common.AreaTokyo, merged.Area)
	assert.Equal(t, common.CategoryArt, merged.Category)

	// English-only entry still yields a record.
	assert.Equal(t, "Small Sculpture Annual", events[1].TitleEN)
	assert.Empty(t, events[1].TitleJA)
}

func TestNHKSymphonyPriceDefaults(t *testing.T) {
	page := `<html><body>
	<div class="concert-item">
		<h3 class="concert-title">第2050回 定期公演 Aプログラム</h3>
		<a href="/concert/2050"></a>
		<span class="concert-date">2025年12月6日</span>
	</div>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/concert/schedule/": page})

	s := NewNHKSymphonyScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL

	events, errs := s.Extract()
	assert.Empty(t, errs)
	require.Len(t, events, 1)
	ev := events[0]
	require.NotNil(t, ev.PriceMin)
	require.NotNil(t, ev.PriceMax)
	assert.Equal(t, nhksoDefaultPriceMin, *ev.PriceMin)
	assert.Equal(t, nhksoDefaultPriceMax, *ev.PriceMax)
	assert.Equal(t, common.CategoryOrchestra, ev.Category)
	assert.Equal(t, "NHKホール", ev.VenueName)
	assert.Equal(t, common.AreaTokyo, ev.Area)
}

func TestEventIDsStableAcrossRuns(t *testing.T) {
	page := `<html><body>
	<li class="event-card"><h3 class="event-title">定点観測イベント</h3><a href="/jp/event/stable"></a></li>
	</body></html>`
	srv := fixtureServer(t, map[string]string{"/jp/event/": page})

	s := NewGoTokyoScraper(testClient(), zerolog.Nop())
	s.baseURL = srv.URL
	s.pages = []string{"/jp/event/"}

	first, _ := s.Extract()
	second, _ := s.Extract()
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].EventID, second[0].EventID)
}
