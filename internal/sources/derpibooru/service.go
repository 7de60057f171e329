// Package derpibooru resolves Derpibooru image posts through the site's
// JSON API.
//
// Derpibooru posts carry no title of their own, so one is synthesized from
// the uploader plus a short content hash; distinct posts by the same
// uploader must not collide, or the similarity engine would flag them as
// duplicates of each other.
package derpibooru

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
const Platform = "derpibooru"

const apiBaseURL = "https://derpibooru.org/api/v1/json/images/"

var imageIDPattern = regexp.MustCompile(`^\d+$`)

// Service fetches post metadata from the Derpibooru JSON API.
type Service struct {
	client *http.Client
}

// New creates the service with the given HTTP client timeout.
func New(timeout time.Duration) *Service {
	return &Service{client: &http.Client{Timeout: timeout}}
}

// CanFetch reports whether the URL points at a Derpibooru host.
func (s *Service) CanFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "derpibooru.org" || host == "trixiebooru.org"
}

// ExtractID pulls the numeric image ID from /images/<id> or the legacy
// bare /<id> path.
func ExtractID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	path := strings.Trim(u.Path, "/")
	path = strings.TrimPrefix(path, "images/")
	// IDs may carry a slug suffix like 123456-artist-name.
	if i := strings.IndexByte(path, '-'); i > 0 {
		path = path[:i]
	}
	if !imageIDPattern.MatchString(path) {
		return "", fmt.Errorf("no image ID in Derpibooru URL %q", rawURL)
	}
	return path, nil
}

// Request looks the image up via the JSON API.
func (s *Service) Request(ctx context.Context, rawURL string) (*fetch.RawResponse, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBaseURL+id, nil)
	if err != nil {
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &fetch.VideoUnavailableError{URL: rawURL, Reason: "image deleted or hidden"}
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

type apiImage struct {
	Image struct {
		ID        json.Number `json:"id"`
		Uploader  string      `json:"uploader"`
		CreatedAt string      `json:"created_at"`
		Duration  float64     `json:"duration"`
		SHA512    string      `json:"sha512_hash"`
	} `json:"image"`
}

// Parse decodes the API response. Bare timestamps are assumed UTC; a static
// image has duration zero, which is valid metadata here.
func (s *Service) Parse(raw *fetch.RawResponse) (model.VideoData, error) {
	var p apiImage
	if err := json.Unmarshal(raw.Body, &p); err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: err}
	}
	if p.Image.Uploader == "" || p.Image.CreatedAt == "" {
		return model.VideoData{}, &fetch.ParseError{
			Service: Platform,
			Err:     fmt.Errorf("response missing uploader or created_at"),
		}
	}

	created, err := parseCreatedAt(p.Image.CreatedAt)
	if err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: err}
	}

	return model.VideoData{
		Title:      SynthesizeTitle(p.Image.Uploader, contentKey(&p)),
		Uploader:   p.Image.Uploader,
		UploadDate: created,
		Duration:   p.Image.Duration,
		Platform:   Platform,
	}, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable created_at %q", s)
}

// contentKey picks the stable value to hash for the synthesized title: the
// upload's own content hash when present, the image ID otherwise.
func contentKey(p *apiImage) string {
	if p.Image.SHA512 != "" {
		return p.Image.SHA512
	}
	return p.Image.ID.String()
}

// SynthesizeTitle builds the stand-in title for platforms without one:
// "Derpibooru post by <uploader> (<short hash>)".
func SynthesizeTitle(uploader, key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("Derpibooru post by %s (%s)", uploader, hex.EncodeToString(sum[:4]))
}
