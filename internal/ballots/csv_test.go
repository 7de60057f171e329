package ballots

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/openballot/tally/internal/model"
)

func TestParseTimestampRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"4/1/2024 9:00:00", time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
		{"12/31/2024 23:59:59", time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)},
		{"4/1/2024 9:5:7", time.Date(2024, 4, 1, 9, 5, 7, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	// Month, day, and hour come out unpadded; the clock keeps two-digit
	// minutes and seconds, matching the spreadsheet-export convention.
	if got := FormatTimestamp(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)); got != "4/1/2024 9:00:00" {
		t.Errorf("FormatTimestamp = %q, want 4/1/2024 9:00:00", got)
	}
	if got := FormatTimestamp(time.Date(2024, 12, 31, 23, 5, 7, 0, time.UTC)); got != "12/31/2024 23:05:07" {
		t.Errorf("FormatTimestamp = %q, want 12/31/2024 23:05:07", got)
	}

	if _, err := ParseTimestamp("not a timestamp"); err == nil {
		t.Error("garbage input should fail")
	}
}

func TestReadVotes(t *testing.T) {
	in := strings.Join([]string{
		"Timestamp,Vote 1,Vote 2,Vote 3",
		"4/1/2024 9:00:00,https://a.example/1,,https://b.example/2",
		"4/2/2024 10:30:00,https://c.example/3",
	}, "\n")

	ballots, err := ReadVotes(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadVotes() error: %v", err)
	}
	if len(ballots) != 2 {
		t.Fatalf("got %d ballots, want 2", len(ballots))
	}
	if got := len(ballots[0].Votes); got != 2 {
		t.Errorf("ballot 0 has %d votes, want 2 (empty cell skipped)", got)
	}
	if ballots[0].Votes[1].URL != "https://b.example/2" {
		t.Errorf("vote order not preserved: %q", ballots[0].Votes[1].URL)
	}
	if !ballots[1].Timestamp.Equal(time.Date(2024, 4, 2, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("ballot 1 timestamp = %v", ballots[1].Timestamp)
	}
}

func TestReadVotesRejectsBadHeader(t *testing.T) {
	for _, in := range []string{
		"Time,Vote 1\n4/1/2024 9:00:00,https://a.example/1",
		"timestamp,Vote 1\n4/1/2024 9:00:00,https://a.example/1",
	} {
		if _, err := ReadVotes(strings.NewReader(in)); err == nil {
			t.Errorf("header %q should fail the whole file", strings.SplitN(in, "\n", 2)[0])
		}
	}
}

func TestReadVotesRejectsBadRowTimestamp(t *testing.T) {
	in := "Timestamp,Vote 1\nyesterday,https://a.example/1"
	if _, err := ReadVotes(strings.NewReader(in)); err == nil {
		t.Error("an unparseable row timestamp should fail")
	}
}

func TestWriteAnnotated(t *testing.T) {
	b := model.NewBallot(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		[]string{"https://a.example/1", "https://b.example/2"})
	b.Votes[1].Annotations.Add(model.TagDuplicateVideo)

	index := model.Index{
		"https://a.example/1": model.NewVideo(&model.VideoData{
			Title: "Resolved Title", Uploader: "someone",
			UploadDate: time.Now(), Duration: 100, Platform: "test",
		}),
		"https://b.example/2": model.NewVideo(nil),
	}

	var buf bytes.Buffer
	if err := WriteAnnotated(&buf, []*model.Ballot{b}, index, NormalizeURL, DefaultVoteSlots); err != nil {
		t.Fatalf("WriteAnnotated() error: %v", err)
	}

	row := strings.Split(strings.TrimRight(buf.String(), "\n"), ",")
	if got, want := len(row), 1+2*DefaultVoteSlots; got != want {
		t.Fatalf("row has %d columns, want %d", got, want)
	}
	if row[0] != "4/1/2024 9:00:00" {
		t.Errorf("timestamp column = %q", row[0])
	}
	if row[1] != "Resolved Title" {
		t.Errorf("resolved vote should show its title, got %q", row[1])
	}
	if row[3] != "https://b.example/2" {
		t.Errorf("dataless vote should fall back to its URL, got %q", row[3])
	}
	if row[4] != "[DUPLICATE VIDEO]" {
		t.Errorf("label column = %q", row[4])
	}
	for i := 5; i < len(row); i++ {
		if row[i] != "" {
			t.Errorf("column %d should be empty padding, got %q", i, row[i])
		}
	}
}
