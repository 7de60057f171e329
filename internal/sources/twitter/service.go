// Package twitter resolves Twitter/X video posts through the public
// syndication endpoint. Posts have no real title, so one is synthesized the
// same way the other post-style services do it.
package twitter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/openballot/tally/internal/fetch"
	"github.com/openballot/tally/internal/model"
)

// Platform is the tag stamped on metadata resolved by this service.
const Platform = "twitter"

const syndicationURL = "https://cdn.syndication.twimg.com/tweet-result?id="

var statusPathPattern = regexp.MustCompile(`^[^/]+/status(?:es)?/(\d+)$`)

// Service fetches post metadata from the syndication endpoint.
type Service struct {
	client *http.Client
}

// New creates the service with the given HTTP client timeout.
func New(timeout time.Duration) *Service {
	return &Service{client: &http.Client{Timeout: timeout}}
}

// CanFetch reports whether the URL points at a Twitter/X host.
func (s *Service) CanFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "twitter.com", "x.com", "mobile.twitter.com":
		return true
	}
	return false
}

// ExtractID pulls the numeric status ID from a status URL.
func ExtractID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	m := statusPathPattern.FindStringSubmatch(strings.Trim(u.Path, "/"))
	if m == nil {
		return "", fmt.Errorf("no status ID in URL %q", rawURL)
	}
	return m[1], nil
}

// Request looks the post up via the syndication endpoint.
func (s *Service) Request(ctx context.Context, rawURL string) (*fetch.RawResponse, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, syndicationURL+id, nil)
	if err != nil {
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, &fetch.VideoUnavailableError{URL: rawURL, Reason: "post deleted or restricted"}
	case resp.StatusCode != http.StatusOK:
		return nil, &fetch.RequestError{
			Service: Platform,
			URL:     rawURL,
			Err:     fmt.Errorf("HTTP %d %s", resp.StatusCode, resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}
	return &fetch.RawResponse{Body: body, FetchedAt: time.Now()}, nil
}

type apiTweet struct {
	IDStr     string `json:"id_str"`
	CreatedAt string `json:"created_at"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	Video struct {
		DurationMS float64 `json:"duration_ms"`
	} `json:"video"`
}

// Parse decodes the syndication response. The endpoint reports duration in
// milliseconds; it is normalized to seconds here so every platform's
// duration means the same thing downstream.
func (s *Service) Parse(raw *fetch.RawResponse) (model.VideoData, error) {
	var p apiTweet
	if err := json.Unmarshal(raw.Body, &p); err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: err}
	}
	if p.User.ScreenName == "" || p.CreatedAt == "" || p.IDStr == "" {
		return model.VideoData{}, &fetch.ParseError{
			Service: Platform,
			Err:     fmt.Errorf("response missing user, id, or created_at"),
		}
	}

	created, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: fmt.Errorf("bad created_at: %w", err)}
	}

	sum := sha256.Sum256([]byte(p.IDStr))
	title := fmt.Sprintf("Twitter post by %s (%s)", p.User.ScreenName, hex.EncodeToString(sum[:4]))

	return model.VideoData{
		Title:      title,
		Uploader:   p.User.ScreenName,
		UploadDate: created.UTC(),
		Duration:   p.Video.DurationMS / 1000,
		Platform:   Platform,
	}, nil
}
