package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func TestParseDateFullJapanese(t *testing.T) {
	d := ParseDate("2025年1月15日", testNow)
	require.NotNil(t, d)
	assert.Equal(t, "2025-01-15", ISODate(*d))
}

func TestParseDateFullwidthDigits(t *testing.T) {
	d := ParseDate("２０２５年７月３日", testNow)
	require.NotNil(t, d)
	assert.Equal(t, "2025-07-03", ISODate(*d))
}

func TestParseDateRangeSameMonth(t *testing.T) {
	start, end := ParseDateRange("7月2日〜26日", testNow)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, "2025-07-02", ISODate(*start))
	assert.Equal(t, "2025-07-26", ISODate(*end))
}

func TestParseDateRangeCrossMonth(t *testing.T) {
	start, end := ParseDateRange("11月25日〜12月10日", testNow)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, "2025-11-25", ISODate(*start))
	assert.Equal(t, "2025-12-10", ISODate(*end))
}

func TestParseDateRangeCrossYear(t *testing.T) {
	// December into January rolls the end date into next year.
	start, end := ParseDateRange("12月28日〜1月5日", testNow)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, "2025-12-28", ISODate(*start))
	assert.Equal(t, "2026-01-05", ISODate(*end))
}

func TestParseDateShortNumericRollsToNextYear(t *testing.T) {
	// March has passed relative to a June "now".
	d := ParseDate("3/15", testNow)
	require.NotNil(t, d)
	assert.Equal(t, "2026-03-15", ISODate(*d))

	d = ParseDate("9.20", testNow)
	require.NotNil(t, d)
	assert.Equal(t, "2025-09-20", ISODate(*d))
}

func TestParseDateRangeLatinMonths(t *testing.T) {
	start, end := ParseDateRange("Jan 15 - Feb 28, 2025", testNow)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, "2025-01-15", ISODate(*start))
	assert.Equal(t, "2025-02-28", ISODate(*end))
}

func TestParseDateFallbackLayouts(t *testing.T) {
	d := ParseDate("2025/10/01", testNow)
	require.NotNil(t, d)
	assert.Equal(t, "2025-10-01", ISODate(*d))

	d = ParseDate("January 3, 2026", testNow)
	require.NotNil(t, d)
	assert.Equal(t, "2026-01-03", ISODate(*d))
}

func TestParseDateUnparsable(t *testing.T) {
	start, end := ParseDateRange("近日公開", testNow)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestISODateOrFallsBackToNow(t *testing.T) {
	assert.Equal(t, "2025-06-10", ISODateOr(nil, testNow))
	d := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-01", ISODateOr(&d, testNow))
}
