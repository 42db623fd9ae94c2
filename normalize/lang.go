package normalize

import (
	"unicode"
)

// LatinRatio is the fraction of Latin letters among the non-space characters
// of s. Returns 0 for blank input.
func LatinRatio(s string) float64 {
	var latin, total int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(latin) / float64(total)
}

// MostlyLatin reports whether a scraped title can double as its own English
// value.
func MostlyLatin(s string) bool {
	return LatinRatio(s) > 0.5
}
