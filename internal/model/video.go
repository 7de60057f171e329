// Package model defines the data types the validation engine operates on.
//
// A Video is the resolved identity (or failure state) for one unique URL.
// It is created once during ballot resolution and shared by reference across
// every ballot whose votes reference that URL, so an annotation applied to a
// Video is visible to all of them.
package model

import (
	"strings"
	"time"
)

// Annotation tags applied by resolution and the rule engine. The annotation
// model is an open string-tag set, but these are the canonical tags this
// engine produces; tests assert exact membership against them.
const (
	TagUnsupportedHost    = "UNSUPPORTED HOST"
	TagVideoUnavailable   = "VIDEO UNAVAILABLE"
	TagCouldNotFetch      = "COULD NOT FETCH"
	TagVideoTooOld        = "VIDEO TOO OLD"
	TagVideoTooNew        = "VIDEO TOO NEW"
	TagVideoTooShort      = "VIDEO TOO SHORT"
	TagVideoMaybeTooShort = "VIDEO MAYBE TOO SHORT"
	TagBlacklisted        = "BLACKLISTED"
	TagNotWhitelisted     = "NOT WHITELISTED"
	TagDomainNotAccepted  = "DOMAIN NOT ACCEPTED"
	TagFiveChannelRule    = "5 CHANNEL RULE"
	TagDuplicateVideo     = "DUPLICATE VIDEO"
	TagDuplicateCreator   = "DUPLICATE CREATOR"
)

// VideoData is the resolved metadata for a video, produced by a fetch
// service's Parse step. Immutable once produced within a fetch cycle.
type VideoData struct {
	Title      string
	Uploader   string
	UploadDate time.Time // timezone-aware
	Duration   float64   // seconds, >= 0
	Platform   string
}

// Video wraps optional VideoData plus the annotations accumulated for the
// URL. A nil Data means the fetch failed or the video is unavailable; the
// reason is recorded as an annotation during resolution.
type Video struct {
	Data        *VideoData
	Annotations Annotations
}

// NewVideo wraps resolved data. Pass nil for a dataless (failed) entry.
func NewVideo(data *VideoData) *Video {
	return &Video{Data: data}
}

// HasData reports whether the video resolved to usable metadata.
func (v *Video) HasData() bool {
	return v.Data != nil
}

// Annotations is an insertion-ordered collection of string tags.
//
// Tags are never deduplicated and never removed: insertion order is the
// evaluation order of the rules that produced them, and that order is
// load-bearing for the user-facing label.
type Annotations struct {
	tags []string
}

// Add appends a tag. Duplicates are kept.
func (a *Annotations) Add(tag string) {
	a.tags = append(a.tags, tag)
}

// Has reports whether the tag has been added at least once.
func (a *Annotations) Has(tag string) bool {
	for _, t := range a.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Count returns the number of tags, duplicates included.
func (a *Annotations) Count() int {
	return len(a.tags)
}

// Tags returns the tags in insertion order. The returned slice is a copy.
func (a *Annotations) Tags() []string {
	out := make([]string, len(a.tags))
	copy(out, a.tags)
	return out
}

// Label renders the annotations for report output: the empty string when no
// tags were added, otherwise each tag wrapped in brackets, insertion order.
func (a *Annotations) Label() string {
	if len(a.tags) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range a.tags {
		b.WriteString("[")
		b.WriteString(t)
		b.WriteString("]")
	}
	return b.String()
}
