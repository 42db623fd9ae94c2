package normalize

import (
	"strconv"
)

// EventID derives the stable upsert key for an event: a djb2 hash of the
// per-source uniqueness string (canonical URL, or URL+title when several
// events share a URL), base-36, behind the source prefix. Deterministic by
// construction, so a re-scrape lands on the same key.
func EventID(prefix, unique string) string {
	var h uint64 = 5381
	for _, b := range []byte(unique) {
		h = h*33 + uint64(b)
	}
	return prefix + "-" + strconv.FormatUint(h, 36)
}
