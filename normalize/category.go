package normalize

import (
	"strings"

	"github.com/ibento/common"
)

// categoryKeywords is checked strictly in order; the specific groups sit
// before the generic ones so that, say, オーケストラ never falls through to
// the concert bucket. Overlaps are resolved by this order alone.
var categoryKeywords = []struct {
	Category string
	Keywords []string
}{
	{common.CategoryTheatreTraditional, []string{"歌舞伎", "kabuki", "能楽", "狂言", "文楽", "noh"}},
	{common.CategoryTheatreTraditional, []string{"落語", "rakugo", "寄席", "講談", "浪曲"}},
	{common.CategoryOrchestra, []string{"オーケストラ", "orchestra", "交響楽団", "交響曲", "symphony", "フィルハーモニー", "philharmonic", "クラシック", "classical", "室内楽", "リサイタル"}},
	{common.CategoryMusical, []string{"ミュージカル", "musical"}},
	{common.CategoryAnime, []string{"アニメ", "anime", "マンガ", "漫画", "manga", "コラボカフェ", "コラボ", "collab", "ポップアップ", "pop-up", "popup", "声優", "コスプレ", "cosplay"}},
	{common.CategoryConcert, []string{"コンサート", "concert", "ライブ", "live", "ツアー", "tour", "ワンマン", "gig"}},
	{common.CategoryStage, []string{"演劇", "舞台", "theatre", "theater", "stage", "朗読劇", "公演"}},
	{common.CategoryFestival, []string{"フェスティバル", "フェス", "festival", "祭り", "祭", "matsuri", "花火", "盆踊り"}},
	{common.CategoryArt, []string{"展覧会", "美術", "exhibition", "アート", "art", "ギャラリー", "gallery", "個展", "写真展", "展示"}},
	{common.CategoryFilm, []string{"映画", "film", "cinema", "上映", "シネマ"}},
}

// DetectCategory maps free text to the first matching category group, or
// CategoryEvent when nothing matches.
func DetectCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, group := range categoryKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(lowered, kw) {
				return group.Category
			}
		}
	}
	return common.CategoryEvent
}
