package similarity

import (
	"sort"

	"github.com/openballot/tally/internal/model"
)

// crossStringThreshold is the minimum score at which a title or uploader
// pair counts as similar in the cross-platform scan. Duration has no
// threshold of its own: any positive closeness counts, because duration is
// only ever trusted in combination with a textual signal.
const crossStringThreshold = 90.0

// Matches is the cross-platform detector result: URL -> similar URL ->
// qualifying properties (in Properties order). URLs with no surviving
// matches are omitted.
type Matches map[string]map[string][]Property

// DetectCrossPlatform scans all resolved videos for pairs that look like the
// same upload posted on different platforms.
//
// The index keys are assumed to already be canonical (resolution normalizes
// before indexing), so two variants of the same YouTube URL occupy a single
// entry and are never compared against each other. Dataless entries are
// skipped. For every remaining pair, each property is scored independently;
// a pair survives only when its combined property set is exactly one of
// {title, uploader, duration}, {title, uploader}, or {title, duration}.
// A pair similar only in duration, only in uploader, or only in title is
// noise and is discarded.
func DetectCrossPlatform(index model.Index) Matches {
	urls := make([]string, 0, len(index))
	for u, v := range index {
		if v.HasData() {
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)

	result := make(Matches)
	for i, a := range urls {
		for j, b := range urls {
			if i == j {
				continue
			}
			props := pairProperties(index[a].Data, index[b].Data)
			if !allowedCombination(props) {
				continue
			}
			if result[a] == nil {
				result[a] = make(map[string][]Property)
			}
			result[a][b] = props
		}
	}
	return result
}

// pairProperties collects the properties on which two videos score above
// their thresholds, in Properties order.
func pairProperties(a, b *model.VideoData) []Property {
	var props []Property
	if Ratio(a.Title, b.Title) > crossStringThreshold {
		props = append(props, PropTitle)
	}
	if Ratio(a.Uploader, b.Uploader) > crossStringThreshold {
		props = append(props, PropUploader)
	}
	if DurationRatio(a.Duration, b.Duration) > 0 {
		props = append(props, PropDuration)
	}
	return props
}

// allowedCombination keeps only the exact property sets the detector
// trusts. props is already in Properties order, so positional checks are
// enough.
func allowedCombination(props []Property) bool {
	switch len(props) {
	case 3:
		return true
	case 2:
		return props[0] == PropTitle
	default:
		return false
	}
}
