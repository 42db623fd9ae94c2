package translate

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("落語の夕べ")
	assert.False(t, ok)

	c.Put("落語の夕べ", "An Evening of Rakugo")
	got, ok := c.Get("落語の夕べ")
	assert.True(t, ok)
	assert.Equal(t, "An Evening of Rakugo", got)
}

func TestTranslateTitlesServedEntirelyFromCache(t *testing.T) {
	// With every title cached, no API call is made, so this works offline.
	cache := NewCache()
	cache.Put("歌舞伎の夜", "A Night of Kabuki")
	cache.Put("交響曲第九番", "Symphony No. 9")

	tr := New(cache, zerolog.Nop())
	out, err := tr.TranslateTitles(context.Background(), []string{"歌舞伎の夜", "交響曲第九番"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A Night of Kabuki", "Symphony No. 9"}, out)
}
