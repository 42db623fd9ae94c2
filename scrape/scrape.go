package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ibento/common"
	"github.com/ibento/normalize"
)

// Scraper turns one source's listing pages into normalized events. Extract
// never fails as a whole: per-page and per-block problems are recorded as
// error strings and the rest of the page survives.
type Scraper interface {
	Name() string
	Extract() ([]common.Event, []string)
}

// arena is the in-run event collection: an append list plus a key→index
// lookup. The index makes the one documented late mutation possible (a
// bilingual source back-filling title_en on a record emitted earlier in the
// same run) and doubles as the intra-run dedup set.
type arena struct {
	events []common.Event
	index  map[string]int
}

func newArena() *arena {
	return &arena{index: map[string]int{}}
}

// add appends the event unless its key was already emitted this run.
func (a *arena) add(key string, ev common.Event) bool {
	if _, seen := a.index[key]; seen {
		return false
	}
	a.index[key] = len(a.events)
	a.events = append(a.events, ev)
	return true
}

// get returns the position of a previously emitted event.
func (a *arena) get(key string) (int, bool) {
	i, ok := a.index[key]
	return i, ok
}

func (a *arena) list() []common.Event {
	return a.events
}

// selectBlocks tries the source's selector alternatives in order and returns
// the first that matches real markup. Sources restructure pages over time;
// stale selectors simply match nothing and the next one gets its turn.
func selectBlocks(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if s := doc.Find(sel); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// runBlock isolates one candidate block so a malformed entry cannot abort
// the rest of the page.
func runBlock(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("block panic: %v", r)
		}
	}()
	return fn()
}

// firstText returns the collapsed text of the first selector that yields a
// non-empty match under s.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := collapse(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// firstRichText is firstText for blocks that carry inline markup. Summary and
// program cells routinely hold <br> runs and links that the plain text walk
// would jam together, so the fragment goes through the HTML-to-text pass.
func firstRichText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		node := s.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if html, err := node.Html(); err == nil {
			if t := normalize.CleanText(html); t != "" {
				return t
			}
		}
	}
	return ""
}

// firstAttr returns the named attribute from the first selector that
// carries it.
func firstAttr(s *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := s.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := s.Attr(attr); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// absoluteURL resolves href against the source's base origin. Already
// absolute links pass through untouched.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

// validTitle rejects blocks whose title is missing or implausibly short.
func validTitle(title string) bool {
	return len([]rune(title)) >= 2
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
