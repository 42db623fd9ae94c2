package normalize

import (
	"strings"

	"github.com/ibento/common"
)

// areaKeywords maps place-name substrings to canonical cities. Checked in
// order, first match wins. Latin keywords are matched case-insensitively;
// ward and landmark names fold into their city.
var areaKeywords = []struct {
	Area     string
	Keywords []string
}{
	{common.AreaTokyo, []string{"東京", "tokyo", "渋谷", "shibuya", "新宿", "shinjuku", "池袋", "ikebukuro", "銀座", "秋葉原", "akihabara", "上野", "両国", "お台場", "吉祥寺", "日比谷"}},
	{common.AreaYokohama, []string{"横浜", "yokohama", "みなとみらい", "川崎", "kawasaki"}},
	{common.AreaOsaka, []string{"大阪", "osaka", "梅田", "umeda", "難波", "なんば", "namba", "心斎橋"}},
	{common.AreaKyoto, []string{"京都", "kyoto", "祇園"}},
	{common.AreaNagoya, []string{"名古屋", "nagoya"}},
	{common.AreaFukuoka, []string{"福岡", "fukuoka", "博多", "hakata", "天神"}},
	{common.AreaSapporo, []string{"札幌", "sapporo"}},
	{common.AreaSendai, []string{"仙台", "sendai"}},
	{common.AreaKobe, []string{"神戸", "kobe", "三宮"}},
	{common.AreaHiroshima, []string{"広島", "hiroshima"}},
}

// DetectArea maps free text to a canonical city, or AreaJapan when nothing
// matches.
func DetectArea(text string) string {
	lowered := strings.ToLower(text)
	for _, group := range areaKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(lowered, kw) {
				return group.Area
			}
		}
	}
	return common.AreaJapan
}
