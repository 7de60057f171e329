// Package fetch defines the service contract for resolving a video URL to
// its metadata, the typed errors the resolution layer dispatches on, and the
// Fetcher that routes URLs to registered services with optional raw-response
// caching.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/openballot/tally/internal/model"
)

// RawResponse is the raw (pre-parse) payload a service's Request step
// produced, and the unit the cache stores. Parse is always re-run on it,
// even for cache hits, so parser fixes apply to cached data without
// re-fetching.
type RawResponse struct {
	Body      []byte
	FetchedAt time.Time
}

// Service is the capability contract a fetch service must satisfy.
//
// CanFetch is a pure predicate and must not panic. Request performs the
// (possibly network) lookup and fails with *RequestError on transport,
// authorization, or quota failures, with *VideoUnavailableError when the
// remote explicitly reports the resource gone or withheld, or with a plain
// error when the URL cannot be parsed into an identifier the service
// understands. Parse is a pure transformation of the raw response and fails
// with *ParseError when required fields are absent.
type Service interface {
	CanFetch(url string) bool
	Request(ctx context.Context, url string) (*RawResponse, error)
	Parse(raw *RawResponse) (model.VideoData, error)
}

// Cache stores raw responses keyed by (service, url).
type Cache interface {
	Get(service, url string) (*RawResponse, bool, error)
	Put(service, url string, raw *RawResponse) error
}

// UnsupportedHostError reports that no registered service can handle a URL.
type UnsupportedHostError struct {
	URL string
}

func (e *UnsupportedHostError) Error() string {
	return fmt.Sprintf("no registered service can fetch %q", e.URL)
}

// RequestError reports a failed lookup: network, auth, or rate limiting.
type RequestError struct {
	Service string
	URL     string
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: request for %q failed: %v", e.Service, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// VideoUnavailableError reports that the remote explicitly confirmed the
// content is gone, private, or otherwise withheld.
type VideoUnavailableError struct {
	URL    string
	Reason string
}

func (e *VideoUnavailableError) Error() string {
	return fmt.Sprintf("video unavailable at %q: %s", e.URL, e.Reason)
}

// ParseError reports that a response was obtained but could not be
// interpreted.
type ParseError struct {
	Service string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse failed: %v", e.Service, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
