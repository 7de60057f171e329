// Package youtube resolves YouTube video URLs through the Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/openballot/tally/internal/fetch"
	"github.com/openballot/tally/internal/model"
)

// Platform is the tag stamped on metadata resolved by this service.
const Platform = "youtube"

// maxAttempts bounds the retry loop around the API call. Retries live here,
// inside the service, never in the dispatcher.
const maxAttempts = 3

// retryBackoff is the base delay between attempts; attempt n waits n times
// this long.
const retryBackoff = 2 * time.Second

// videoIDPattern is the 11-character video identifier.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Service fetches video metadata from the YouTube Data API.
type Service struct {
	api     *youtubeapi.Service
	limiter *rate.Limiter
}

// New creates the service with the given API key.
func New(apiKey string) (*Service, error) {
	api, err := youtubeapi.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Service{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}, nil
}

// CanFetch reports whether the URL points at a YouTube host.
func (s *Service) CanFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return isYouTubeHost(u.Host)
}

func isYouTubeHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "youtube.com" || host == "youtu.be"
}

// ExtractID pulls the 11-character video ID out of the URL shapes YouTube
// serves: youtu.be/<id>, watch?v=<id>, /live/<id>, /shorts/<id>.
func ExtractID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if !isYouTubeHost(u.Host) {
		return "", fmt.Errorf("not a YouTube URL: %q", rawURL)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case strings.HasPrefix(u.Path, "/watch"):
		id = u.Query().Get("v")
		if id == "" {
			return "", fmt.Errorf("watch URL without v parameter: %q", rawURL)
		}
	case strings.HasPrefix(u.Path, "/live/"):
		id = strings.Trim(strings.TrimPrefix(u.Path, "/live/"), "/")
	case strings.HasPrefix(u.Path, "/shorts/"):
		id = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
	default:
		return "", fmt.Errorf("unrecognized YouTube URL shape: %q", rawURL)
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("malformed YouTube video ID %q in %q", id, rawURL)
	}
	return id, nil
}

// Normalize collapses every YouTube URL variant for a video to the single
// canonical watch URL.
func Normalize(rawURL string) (string, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return "", err
	}
	return "https://www.youtube.com/watch?v=" + id, nil
}

// payload is the slice of the API response the parser needs; Request stores
// it as the raw body so cached entries survive parser changes.
type payload struct {
	Title       string `json:"title"`
	ChannelName string `json:"channelTitle"`
	PublishedAt string `json:"publishedAt"`
	Duration    string `json:"duration"` // ISO-8601, e.g. PT3M20S
}

// Request looks the video up via the Data API. Quota and server errors are
// retried with backoff up to maxAttempts before surfacing as a request
// error; a missing item means the video is gone or withheld.
func (s *Service) Request(ctx context.Context, rawURL string) (*fetch.RawResponse, error) {
	id, err := ExtractID(rawURL)
	if err != nil {
		return nil, err
	}

	var resp *youtubeapi.VideoListResponse
	for attempt := 1; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
		}

		resp, err = s.api.Videos.
			List([]string{"snippet", "contentDetails"}).
			Id(id).
			Context(ctx).
			Do()
		if err == nil {
			break
		}
		if attempt < maxAttempts && retryable(err) {
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
				continue
			case <-ctx.Done():
				return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: ctx.Err()}
			}
		}
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}

	if len(resp.Items) == 0 {
		return nil, &fetch.VideoUnavailableError{URL: rawURL, Reason: "not returned by the Data API"}
	}

	item := resp.Items[0]
	body, err := json.Marshal(payload{
		Title:       item.Snippet.Title,
		ChannelName: item.Snippet.ChannelTitle,
		PublishedAt: item.Snippet.PublishedAt,
		Duration:    item.ContentDetails.Duration,
	})
	if err != nil {
		return nil, &fetch.RequestError{Service: Platform, URL: rawURL, Err: err}
	}

	return &fetch.RawResponse{Body: body, FetchedAt: time.Now()}, nil
}

func retryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 429 || apiErr.Code >= 500
}

// Parse decodes the stored payload into video metadata.
func (s *Service) Parse(raw *fetch.RawResponse) (model.VideoData, error) {
	var p payload
	if err := json.Unmarshal(raw.Body, &p); err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: err}
	}
	if p.Title == "" || p.ChannelName == "" || p.PublishedAt == "" || p.Duration == "" {
		return model.VideoData{}, &fetch.ParseError{
			Service: Platform,
			Err:     fmt.Errorf("response missing required fields: %+v", p),
		}
	}

	published, err := time.Parse(time.RFC3339, p.PublishedAt)
	if err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: fmt.Errorf("bad publish date: %w", err)}
	}
	seconds, err := ParseISODuration(p.Duration)
	if err != nil {
		return model.VideoData{}, &fetch.ParseError{Service: Platform, Err: err}
	}

	return model.VideoData{
		Title:      p.Title,
		Uploader:   p.ChannelName,
		UploadDate: published,
		Duration:   seconds,
		Platform:   Platform,
	}, nil
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration decodes the ISO-8601 duration strings the Data API
// serves (PT3M20S, PT1H2M, P1DT2H) into seconds.
func ParseISODuration(s string) (float64, error) {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unparseable ISO-8601 duration %q", s)
	}
	var total float64
	for i, mult := range []float64{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		var n float64
		fmt.Sscanf(m[i+1], "%f", &n)
		total += n * mult
	}
	return total, nil
}
