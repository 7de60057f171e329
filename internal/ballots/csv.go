package ballots

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openballot/tally/internal/model"
)

// DefaultVoteSlots is the fixed vote-slot count of the annotated report:
// one timestamp column plus two columns per slot.
const DefaultVoteSlots = 10

// ReadVotes parses a votes table. The header's first cell must literally
// equal "Timestamp"; anything else fails the whole file. Each data row is
// one ballot: a timestamp followed by vote URLs, empty cells skipped.
func ReadVotes(r io.Reader) ([]*model.Ballot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading votes header: %w", err)
	}
	if len(header) == 0 || header[0] != "Timestamp" {
		return nil, fmt.Errorf("votes header starts with %q, want \"Timestamp\"", first(header))
	}

	var ballots []*model.Ballot
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading votes row %d: %w", row, err)
		}
		if len(record) == 0 {
			continue
		}
		ts, err := ParseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("votes row %d: %w", row, err)
		}
		var urls []string
		for _, cell := range record[1:] {
			if cell = strings.TrimSpace(cell); cell != "" {
				urls = append(urls, cell)
			}
		}
		ballots = append(ballots, model.NewBallot(ts, urls))
	}
	return ballots, nil
}

// ReadVotesFile reads a votes CSV from disk.
func ReadVotesFile(path string) ([]*model.Ballot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening votes file: %w", err)
	}
	defer f.Close()

	ballots, err := ReadVotes(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ballots, nil
}

func first(record []string) string {
	if len(record) == 0 {
		return ""
	}
	return record[0]
}

// WriteAnnotated writes one row per ballot: the timestamp, then per vote
// slot the video title (or the cast URL when the fetch produced no data)
// and the vote's annotation label. Rows are padded to the fixed slot
// count; votes beyond it are dropped.
func WriteAnnotated(w io.Writer, ballots []*model.Ballot, index model.Index, normalize func(string) string, slots int) error {
	cw := csv.NewWriter(w)
	for _, b := range ballots {
		record := make([]string, 0, 1+2*slots)
		record = append(record, FormatTimestamp(b.Timestamp))
		for i := 0; i < slots; i++ {
			if i >= len(b.Votes) {
				record = append(record, "", "")
				continue
			}
			vote := b.Votes[i]
			cell := vote.URL
			if v, ok := index[normalize(vote.URL)]; ok && v.HasData() {
				cell = v.Data.Title
			}
			record = append(record, cell, vote.Annotations.Label())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing annotated ballot: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
