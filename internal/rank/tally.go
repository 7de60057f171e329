// Package rank tallies qualifying votes into the Top-N result.
package rank

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/openballot/tally/internal/model"
)

// Entry is one row of the Top-N tally.
type Entry struct {
	Rank  int
	Count int
	Title string
	URL   string
}

// Tally counts qualifying votes per canonical URL and returns the top n
// entries, highest count first, ties broken lexicographically by URL. A
// vote qualifies only when it carries no annotation: every rule finding,
// duplicate or similarity flag disqualifies the vote it is attached to.
func Tally(ballots []*model.Ballot, index model.Index, normalize func(string) string, n int) []Entry {
	counts := make(map[string]int)
	for _, b := range ballots {
		for _, vote := range b.Votes {
			if vote.Annotations.Count() > 0 {
				continue
			}
			counts[normalize(vote.URL)]++
		}
	}

	entries := make([]Entry, 0, len(counts))
	for url, count := range counts {
		title := url
		if v, ok := index[url]; ok && v.HasData() {
			title = v.Data.Title
		}
		entries = append(entries, Entry{Count: count, Title: title, URL: url})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].URL < entries[j].URL
	})

	if n < len(entries) {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// WriteCSV writes the tally as rank,count,title,url rows with a header.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "count", "title", "url"}); err != nil {
		return fmt.Errorf("writing tally header: %w", err)
	}
	for _, e := range entries {
		row := []string{strconv.Itoa(e.Rank), strconv.Itoa(e.Count), e.Title, e.URL}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing tally row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
