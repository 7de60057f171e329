// Package rules annotates resolved videos and ballots with integrity
// findings. Video-level checks run over the Resolved-Video Index; ballot
// checks run afterward, in a fixed order chosen so the most consequential
// findings surface first in the report.
package rules

import (
	"net/url"
	"strings"
	"time"

	"github.com/openballot/tally/internal/model"
)

// Duration boundaries, in seconds. The lower check is inclusive on both
// edges.
const (
	tooShortMax      = 30
	maybeTooShortMax = 45
)

// MonthWindow returns the half-open [lower, upper) UTC boundaries of a
// voting month: a timestamp exactly at lower is in-window, exactly at upper
// is out.
func MonthWindow(year int, month time.Month) (lower, upper time.Time) {
	lower = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	upper = lower.AddDate(0, 1, 0)
	return lower, upper
}

// LenientMonthWindow widens the month window to be maximally permissive
// across timezones: lower is the earliest instant at which any local clock
// (UTC+14) reads the first of the month, upper the latest instant at which
// one (UTC-12) still reads the last day.
func LenientMonthWindow(year int, month time.Month) (lower, upper time.Time) {
	lower, upper = MonthWindow(year, month)
	return lower.Add(-14 * time.Hour), upper.Add(12 * time.Hour)
}

// CheckUploadDates annotates videos uploaded outside [lower, upper).
// Dataless videos are skipped; their failure was tagged at resolution.
func CheckUploadDates(index model.Index, lower, upper time.Time) {
	for _, v := range index {
		if !v.HasData() {
			continue
		}
		if v.Data.UploadDate.Before(lower) {
			v.Annotations.Add(model.TagVideoTooOld)
		} else if !v.Data.UploadDate.Before(upper) {
			v.Annotations.Add(model.TagVideoTooNew)
		}
	}
}

// CheckDurations annotates videos at or under the short thresholds.
func CheckDurations(index model.Index) {
	for _, v := range index {
		if !v.HasData() {
			continue
		}
		switch {
		case v.Data.Duration <= tooShortMax:
			v.Annotations.Add(model.TagVideoTooShort)
		case v.Data.Duration <= maybeTooShortMax:
			v.Annotations.Add(model.TagVideoMaybeTooShort)
		}
	}
}

// CheckBlacklist annotates videos whose uploader appears in the blacklist.
// Membership is exact and case-sensitive, as supplied.
func CheckBlacklist(index model.Index, blacklist map[string]bool) {
	for _, v := range index {
		if v.HasData() && blacklist[v.Data.Uploader] {
			v.Annotations.Add(model.TagBlacklisted)
		}
	}
}

// CheckWhitelist annotates videos whose uploader is absent from the
// whitelist.
func CheckWhitelist(index model.Index, whitelist map[string]bool) {
	for _, v := range index {
		if v.HasData() && !whitelist[v.Data.Uploader] {
			v.Annotations.Add(model.TagNotWhitelisted)
		}
	}
}

// CheckAcceptedDomains annotates videos whose URL host is not in the
// accepted-domain set. The check keys on the index URL, so it applies to
// dataless entries too; hosts are matched lowercase with a leading "www."
// stripped.
func CheckAcceptedDomains(index model.Index, accepted map[string]bool) {
	for rawURL, v := range index {
		if !accepted[domainOf(rawURL)] {
			v.Annotations.Add(model.TagDomainNotAccepted)
		}
	}
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
