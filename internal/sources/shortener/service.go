// Package shortener is a composite fetch service for link-shortener URLs:
// it resolves one redirect hop to the canonical URL, then hands the request
// off to an inner service.
package shortener

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openballot/tally/internal/fetch"
	"github.com/openballot/tally/internal/model"
)

// Platform is the service name used in error reporting; parsed metadata
// keeps the inner service's platform tag.
const Platform = "shortener"

// Service resolves shortened URLs and delegates to the wrapped service.
type Service struct {
	hosts  map[string]bool
	inner  fetch.Service
	client *http.Client
}

// New creates the composite for the given shortener hosts, delegating to
// inner. The HTTP client never follows redirects itself; the Location
// header is the answer.
func New(hosts []string, inner fetch.Service, timeout time.Duration) *Service {
	hostSet := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		hostSet[strings.ToLower(h)] = true
	}
	return &Service{
		hosts: hostSet,
		inner: inner,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// CanFetch reports whether the URL's host is a configured shortener and the
// inner service exists to receive the hand-off.
func (s *Service) CanFetch(rawURL string) bool {
	if s.inner == nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return s.hosts[strings.TrimPrefix(strings.ToLower(u.Host), "www.")]
}

// Resolve follows a single redirect hop and returns the target URL.
func (s *Service) Resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", &fetch.RequestError{
			Service: Platform,
			URL:     rawURL,
			Err:     fmt.Errorf("expected a redirect, got HTTP %d", resp.StatusCode),
		}
	}

	target := resp.Header.Get("Location")
	if target == "" {
		return "", &fetch.RequestError{
			Service: Platform,
			URL:     rawURL,
			Err:     fmt.Errorf("redirect without a Location header"),
		}
	}
	return target, nil
}

// Request resolves the redirect, then delegates to the inner service. The
// inner service must be able to fetch the resolved URL.
func (s *Service) Request(ctx context.Context, rawURL string) (*fetch.RawResponse, error) {
	target, err := s.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !s.inner.CanFetch(target) {
		return nil, fmt.Errorf("shortener target %q not fetchable by the delegate service", target)
	}
	return s.inner.Request(ctx, target)
}

// Parse delegates to the inner service: the raw response is the inner
// service's own payload.
func (s *Service) Parse(raw *fetch.RawResponse) (model.VideoData, error) {
	return s.inner.Parse(raw)
}
