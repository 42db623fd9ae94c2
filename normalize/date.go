package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Japanese listing pages mix range dashes freely: 〜, ～, ~, －, ‐ and the
// plain hyphen all appear in the wild.
var (
	reJPDate     = regexp.MustCompile(`(?:(\d{4})年\s*)?(\d{1,2})月\s*(\d{1,2})日\s*(?:[〜～~\x{2212}\x{2010}-]\s*(?:(?:(\d{4})年\s*)?(\d{1,2})月\s*)?(\d{1,2})日)?`)
	reNumeric    = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})\b`)
	reLatinRange = regexp.MustCompile(`([A-Za-z]{3,9})\.?\s+(\d{1,2})\s*[〜～~\x{2013}\x{2014}-]\s*([A-Za-z]{3,9})\.?\s+(\d{1,2}),?\s*(\d{4})`)
)

var latinMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var fallbackLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"Monday, 2 January 2006",
}

// ParseDateRange extracts a start date and, for multi-day runs, an end date
// from free text. Supported notations:
//
//	2025年1月15日
//	1月2日〜26日           (same month, end day only)
//	1月25日〜2月10日       (cross month)
//	3/15, 3.15             (year inferred, see below)
//	Jan 15 - Feb 28, 2025
//	plus a short list of unambiguous fallback layouts
//
// Dates without an explicit year take the year of now, rolling over to next
// year when the month has already passed. Unparsable input yields (nil, nil);
// the caller decides the fallback (extractors substitute the run date).
func ParseDateRange(text string, now time.Time) (*time.Time, *time.Time) {
	text = FoldDigits(text)

	if m := reLatinRange.FindStringSubmatch(text); m != nil {
		startMonth, ok1 := monthByName(m[1])
		endMonth, ok2 := monthByName(m[3])
		if ok1 && ok2 {
			year, _ := strconv.Atoi(m[5])
			startDay, _ := strconv.Atoi(m[2])
			endDay, _ := strconv.Atoi(m[4])
			start := dateOf(year, startMonth, startDay)
			endYear := year
			if endMonth < startMonth {
				endYear++
			}
			end := dateOf(endYear, endMonth, endDay)
			return &start, &end
		}
	}

	if m := reJPDate.FindStringSubmatch(text); m != nil {
		startMonth, _ := strconv.Atoi(m[2])
		startDay, _ := strconv.Atoi(m[3])
		var startYear int
		if m[1] != "" {
			startYear, _ = strconv.Atoi(m[1])
		} else {
			startYear = inferYear(startMonth, now)
		}
		start := dateOf(startYear, time.Month(startMonth), startDay)

		if m[6] == "" {
			return &start, nil
		}

		endDay, _ := strconv.Atoi(m[6])
		endMonth := startMonth
		if m[5] != "" {
			endMonth, _ = strconv.Atoi(m[5])
		}
		endYear := startYear
		if m[4] != "" {
			endYear, _ = strconv.Atoi(m[4])
		} else if endMonth < startMonth {
			endYear++
		}
		end := dateOf(endYear, time.Month(endMonth), endDay)
		return &start, &end
	}

	// Full layouts go before the short M/D form so that "2025.10.01" is not
	// misread as October 1 of an inferred year.
	trimmed := strings.TrimSpace(text)
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			start := dateOf(t.Year(), t.Month(), t.Day())
			return &start, nil
		}
	}

	if m := reNumeric.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			start := dateOf(inferYear(month, now), time.Month(month), day)
			return &start, nil
		}
	}

	return nil, nil
}

// ParseDate is ParseDateRange without the end date.
func ParseDate(text string, now time.Time) *time.Time {
	start, _ := ParseDateRange(text, now)
	return start
}

// inferYear applies the rollover rule: a month earlier than the current one
// refers to next year (listings never advertise the past).
func inferYear(month int, now time.Time) int {
	if month < int(now.Month()) {
		return now.Year() + 1
	}
	return now.Year()
}

func monthByName(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	m, ok := latinMonths[strings.ToLower(name[:3])]
	return m, ok
}

func dateOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ISODate renders a date the way the store expects it.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ISODateOr renders the date, substituting now when it is missing. This is
// the documented least-bad fallback for unparsable dates.
func ISODateOr(t *time.Time, now time.Time) string {
	if t == nil {
		return ISODate(now)
	}
	return ISODate(*t)
}
