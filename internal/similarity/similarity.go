// Package similarity provides the approximate-matching primitives used to
// detect disguised duplicate submissions: a normalized edit-distance ratio
// for strings, a linear-falloff closeness score for durations, and the two
// detectors built on top of them (the intra-ballot fuzzy sweep and the
// cross-platform duplicate scan).
//
// All scores live on a 0..100 scale; 100 means identical.
package similarity

// Property names a video attribute the detectors compare. The values double
// as the property labels in detector output, always listed in Properties
// order.
type Property string

const (
	PropTitle    Property = "title"
	PropUploader Property = "uploader"
	PropDuration Property = "duration"
)

// Properties is the fixed comparison order.
var Properties = []Property{PropTitle, PropUploader, PropDuration}

// durationWindow is the gap, in seconds, at which duration similarity
// bottoms out at zero.
const durationWindow = 5.0

// Ratio scores how similar two strings are, 0..100. The score is the
// Levenshtein distance normalized by the longer input: identical strings
// score 100, strings with nothing in common score 0. Symmetric.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein(ra, rb)
	return (1 - float64(d)/float64(longest)) * 100
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// DurationRatio scores how close two durations are, 0..100: linear falloff
// reaching 0 at a 5-second gap, floored at 0 beyond. Symmetric, and
// DurationRatio(x, x) == 100.
func DurationRatio(a, b float64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff > durationWindow {
		diff = durationWindow
	}
	return 100 - diff/durationWindow*100
}
