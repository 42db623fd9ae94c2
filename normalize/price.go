package normalize

import (
	"regexp"
	"strconv"
)

// PriceBand bounds what counts as a plausible ticket price in JPY. Digit
// runs outside the band (seat counts, phone numbers, years) are noise.
type PriceBand struct {
	Floor int
	Ceil  int
}

// DefaultPriceBand suits most sources; venue-specific scrapers narrow it.
var DefaultPriceBand = PriceBand{Floor: 100, Ceil: 200000}

var reDigitRun = regexp.MustCompile(`\d+`)
var rePriceNoise = regexp.MustCompile(`[,¥円]`)

// ParsePrices extracts the numeric extremes of the plausible digit runs in
// the text. Returns (nil, nil) when nothing plausible remains; a single
// plausible value yields min == max.
func ParsePrices(text string, band PriceBand) (*int, *int) {
	cleaned := rePriceNoise.ReplaceAllString(FoldDigits(text), "")

	var values []int
	for _, run := range reDigitRun.FindAllString(cleaned, -1) {
		n, err := strconv.Atoi(run)
		if err != nil {
			continue
		}
		if n < band.Floor || n > band.Ceil {
			continue
		}
		values = append(values, n)
	}
	if len(values) == 0 {
		return nil, nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return &min, &max
}
