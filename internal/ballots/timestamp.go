// Package ballots reads vote submissions, resolves their URLs into the
// shared video index, and writes the annotated report.
package ballots

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout accepts 1-or-2-digit month, day, hour, minute, and
// second fields, matching spreadsheet-export timestamps like
// "4/1/2024 9:00:00".
const timestampLayout = "1/2/2006 15:4:5"

// ParseTimestamp parses a submission timestamp in M/D/Y h:m:s form.
func ParseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(timestampLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return ts, nil
}

// FormatTimestamp serializes a timestamp back to the M/D/Y h:m:s form the
// submissions use: month, day, and hour unpadded, minutes and seconds
// two-digit. time.Format would zero-pad the hour, so the fields are
// written out directly.
func FormatTimestamp(ts time.Time) string {
	return fmt.Sprintf("%d/%d/%d %d:%02d:%02d",
		int(ts.Month()), ts.Day(), ts.Year(),
		ts.Hour(), ts.Minute(), ts.Second())
}
