package ballots

import (
	"strings"

	"github.com/openballot/tally/internal/sources/youtube"
)

// NormalizeURL maps a cast URL to its canonical form. YouTube variants
// (youtu.be, watch, live, shorts) collapse to one canonical watch URL;
// everything else is used as cast, trimmed. All index lookups and
// duplicate checks key on this form.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, err := youtube.Normalize(trimmed); err == nil {
		return canonical
	}
	return trimmed
}
