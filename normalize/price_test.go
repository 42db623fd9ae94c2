package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePricesRange(t *testing.T) {
	min, max := ParsePrices("¥5,000〜¥8,000", DefaultPriceBand)
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 5000, *min)
	assert.Equal(t, 8000, *max)
}

func TestParsePricesSingleValue(t *testing.T) {
	min, max := ParsePrices("前売 3,500円", DefaultPriceBand)
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 3500, *min)
	assert.Equal(t, 3500, *max)
}

func TestParsePricesFullwidth(t *testing.T) {
	min, max := ParsePrices("￥４，０００", DefaultPriceBand)
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, 4000, *min)
	assert.Equal(t, 4000, *max)
}

func TestParsePricesOutOfBandIsNoise(t *testing.T) {
	// A lone value below the floor is not a price.
	min, max := ParsePrices("全席指定 50円", DefaultPriceBand)
	assert.Nil(t, min)
	assert.Nil(t, max)

	// A venue-tuned band discards a generic-looking but implausible value.
	band := PriceBand{Floor: 1000, Ceil: 50000}
	min, max = ParsePrices("定員 500名 / ¥6,800", band)
	require.NotNil(t, min)
	assert.Equal(t, 6800, *min)
	assert.Equal(t, 6800, *max)
}

func TestParsePricesNothingFound(t *testing.T) {
	min, max := ParsePrices("料金未定", DefaultPriceBand)
	assert.Nil(t, min)
	assert.Nil(t, max)
}
