package model

import "time"

// Vote is a single URL cast within a ballot. Its annotations are independent
// of the shared Video's annotations: a vote can be tagged DUPLICATE VIDEO on
// its ballot without mutating the Video entry other ballots see.
type Vote struct {
	URL         string // as cast; normalize before indexing
	Annotations Annotations
}

// Ballot is one voter's full submission. Votes preserve submission-column
// order; positional output and the uploader-occurrence rule depend on it.
type Ballot struct {
	Timestamp time.Time
	Votes     []*Vote
}

// NewBallot builds a ballot from vote URLs in submission order.
func NewBallot(ts time.Time, urls []string) *Ballot {
	b := &Ballot{Timestamp: ts}
	for _, u := range urls {
		b.Votes = append(b.Votes, &Vote{URL: u})
	}
	return b
}

// Index is the Resolved-Video Index: normalized URL -> shared Video entry.
// It is built once per run, before any rule runs, and is read-only afterward
// except for annotation appends.
type Index map[string]*Video
