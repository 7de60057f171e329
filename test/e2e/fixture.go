package e2e

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openballot/tally/internal/fetch"
	"github.com/openballot/tally/internal/model"
)

// fixtureService serves a fixed catalog of videos keyed by URL, standing in
// for the network services so the whole pipeline runs deterministically.
type fixtureService struct {
	videos map[string]model.VideoData
}

func newFixtureService() *fixtureService {
	april := func(day int) time.Time {
		return time.Date(2024, 4, day, 12, 0, 0, 0, time.UTC)
	}
	return &fixtureService{videos: map[string]model.VideoData{
		"https://videos.example/1": {
			Title: "Morning commute timelapse", Uploader: "Acorn Films",
			UploadDate: april(3), Duration: 180, Platform: "fixture",
		},
		"https://videos.example/2": {
			Title: "Baking sourdough from scratch", Uploader: "Bluebell Studio",
			UploadDate: april(10), Duration: 240, Platform: "fixture",
		},
		"https://videos.example/3": {
			Title: "Restoring an old bicycle", Uploader: "Cricket Media",
			UploadDate: april(14), Duration: 300, Platform: "fixture",
		},
		"https://videos.example/4": {
			Title: "Desert night sky photography", Uploader: "Daffodil Works",
			UploadDate: april(20), Duration: 420, Platform: "fixture",
		},
		"https://videos.example/5": {
			Title: "A week of silent hiking", Uploader: "Evergreen Post",
			UploadDate: april(25), Duration: 600, Platform: "fixture",
		},
		// Out of window and too short, for the rule checks.
		"https://videos.example/stale": {
			Title: "How radios actually work", Uploader: "Foxglove TV",
			UploadDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Duration:   25, Platform: "fixture",
		},
	}}
}

func (s *fixtureService) CanFetch(url string) bool {
	return strings.HasPrefix(url, "https://videos.example/")
}

func (s *fixtureService) Request(ctx context.Context, url string) (*fetch.RawResponse, error) {
	if _, ok := s.videos[url]; !ok {
		return nil, &fetch.VideoUnavailableError{URL: url, Reason: "not in fixture catalog"}
	}
	return &fetch.RawResponse{Body: []byte(url), FetchedAt: time.Now()}, nil
}

func (s *fixtureService) Parse(raw *fetch.RawResponse) (model.VideoData, error) {
	data, ok := s.videos[string(raw.Body)]
	if !ok {
		return model.VideoData{}, &fetch.ParseError{Service: "fixture", Err: fmt.Errorf("unknown key %q", raw.Body)}
	}
	return data, nil
}
