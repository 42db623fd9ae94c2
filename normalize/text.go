package normalize

import (
	"regexp"
	"strings"

	"jaytaylor.com/html2text"
)

var reSpace = regexp.MustCompile(`\s+`)

// CollapseSpace trims and squeezes runs of whitespace (including the
// newlines goquery leaves behind when an element wraps) to single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// CleanText converts an HTML fragment to plain text. Listing pages routinely
// ship markup inside description blocks. Falls back to the collapsed input
// when conversion fails.
func CleanText(fragment string) string {
	text, err := html2text.FromString(fragment, html2text.Options{TextOnly: true})
	if err != nil {
		return CollapseSpace(fragment)
	}
	return CollapseSpace(text)
}

// FoldDigits rewrites fullwidth digits and the fullwidth comma, slash and
// yen sign to their ASCII forms. Japanese sources mix widths freely.
func FoldDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '０' && r <= '９':
			b.WriteRune('0' + (r - '０'))
		case r == '，':
			b.WriteRune(',')
		case r == '／':
			b.WriteRune('/')
		case r == '．':
			b.WriteRune('.')
		case r == '￥':
			b.WriteRune('¥')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
