package similarity

import (
	"strings"

	"github.com/openballot/tally/internal/model"
)

// intraThreshold is the minimum score at which two votes within one ballot
// are grouped as similar for a property.
const intraThreshold = 80.0

// FlagVotes runs the intra-ballot fuzzy sweep over one ballot's votes.
//
// For each property, votes are repeatedly swept: a not-yet-checked seed is
// removed and compared against all remaining unchecked votes; any that score
// above the threshold are merged with the seed into that property's
// similarity set. Duration is compared with the same numeric closeness score
// the cross-platform detector uses.
//
// The result maps vote positions to the properties that flagged them, in
// Properties order. Votes whose URL has no data-bearing entry in the index
// never participate.
func FlagVotes(votes []*model.Vote, normalize func(string) string, index model.Index) map[int][]Property {
	type entry struct {
		pos  int
		data *model.VideoData
	}

	var pool []entry
	for i, v := range votes {
		video, ok := index[normalize(v.URL)]
		if !ok || !video.HasData() {
			continue
		}
		pool = append(pool, entry{pos: i, data: video.Data})
	}

	flagged := make(map[int]map[Property]bool)
	mark := func(pos int, p Property) {
		if flagged[pos] == nil {
			flagged[pos] = make(map[Property]bool)
		}
		flagged[pos][p] = true
	}

	for _, prop := range Properties {
		unchecked := make([]entry, len(pool))
		copy(unchecked, pool)

		for len(unchecked) > 0 {
			seed := unchecked[0]
			unchecked = unchecked[1:]

			var rest []entry
			matched := false
			for _, other := range unchecked {
				if score(prop, seed.data, other.data) > intraThreshold {
					matched = true
					mark(other.pos, prop)
				} else {
					rest = append(rest, other)
				}
			}
			if matched {
				mark(seed.pos, prop)
				unchecked = rest
			}
		}
	}

	out := make(map[int][]Property, len(flagged))
	for pos, props := range flagged {
		for _, p := range Properties {
			if props[p] {
				out[pos] = append(out[pos], p)
			}
		}
	}
	return out
}

// SimilarityTag renders the vote annotation for a set of flagged properties.
func SimilarityTag(props []Property) string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = strings.ToUpper(string(p))
	}
	return "SIMILARITY DETECTED IN " + strings.Join(names, " AND ")
}

func score(p Property, a, b *model.VideoData) float64 {
	switch p {
	case PropTitle:
		return Ratio(a.Title, b.Title)
	case PropUploader:
		return Ratio(a.Uploader, b.Uploader)
	case PropDuration:
		return DurationRatio(a.Duration, b.Duration)
	}
	return 0
}
