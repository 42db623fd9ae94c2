package common

import (
	"time"
)

// Canonical area values. Area detection maps free text onto one of these;
// AreaJapan is the fallback when nothing matches.
const (
	AreaTokyo     = "Tokyo"
	AreaYokohama  = "Yokohama"
	AreaOsaka     = "Osaka"
	AreaKyoto     = "Kyoto"
	AreaNagoya    = "Nagoya"
	AreaFukuoka   = "Fukuoka"
	AreaSapporo   = "Sapporo"
	AreaSendai    = "Sendai"
	AreaKobe      = "Kobe"
	AreaHiroshima = "Hiroshima"
	AreaJapan     = "Japan"
)

// Canonical category values. CategoryEvent is the fallback.
const (
	CategoryTheatreTraditional = "theatre-traditional"
	CategoryOrchestra          = "orchestra"
	CategoryMusical            = "musical"
	CategoryAnime              = "anime"
	CategoryConcert            = "concert"
	CategoryStage              = "stage"
	CategoryFestival           = "festival"
	CategoryArt                = "art"
	CategoryFilm               = "film"
	CategoryEvent              = "event"
)

// Event is the normalized record every scraper produces. EventID is a
// deterministic hash of the source prefix and the canonical URL (or
// URL+title where several events share a URL), so re-scraping upserts
// instead of duplicating.
type Event struct {
	EventID       string    `dynamodbav:"event_id"`
	TitleJA       string    `dynamodbav:"title_ja"`
	TitleEN       string    `dynamodbav:"title_en"`
	DescriptionJA string    `dynamodbav:"description_ja"`
	DescriptionEN string    `dynamodbav:"description_en"`
	DateStart     string    `dynamodbav:"date_start"` // ISO date, always set
	DateEnd       string    `dynamodbav:"date_end"`   // ISO date, multi-day runs only
	VenueName     string    `dynamodbav:"venue_name"`
	VenueAddress  string    `dynamodbav:"venue_address"`
	Area          string    `dynamodbav:"area"`
	Category      string    `dynamodbav:"category"`
	Tags          []string  `dynamodbav:"tags"`
	PriceMin      *int      `dynamodbav:"price_min"`
	PriceMax      *int      `dynamodbav:"price_max"`
	SourceURL     string    `dynamodbav:"source_url"`
	SourceName    string    `dynamodbav:"source_name"`
	ImageURL      string    `dynamodbav:"image_url"`
	FetchedAt     time.Time `dynamodbav:"fetched_at"`
}

// SourceOutcome is the per-source report for one run. It is never persisted.
type SourceOutcome struct {
	Source   string        `json:"source"`
	Events   []Event       `json:"-"`
	Found    int           `json:"found"`
	Errors   []string      `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// RunReport aggregates the outcomes of one orchestrator run.
type RunReport struct {
	RunID       string          `json:"run_id"`
	Outcomes    []SourceOutcome `json:"outcomes"`
	TotalEvents int             `json:"total_events"`
	TotalErrors int             `json:"total_errors"`
	Duration    time.Duration   `json:"duration"`
}

// EventFilters narrows a store query. Zero values mean "no constraint".
// Page is 1-based; Limit defaults to 50.
type EventFilters struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Area     string `json:"area"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}
