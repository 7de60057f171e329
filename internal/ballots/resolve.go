package ballots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openballot/tally/internal/fetch"
	"github.com/openballot/tally/internal/model"
)

// defaultFetchLimit caps concurrent URL resolutions.
const defaultFetchLimit = 5

// SchemaError reports a fetch service that returned VideoData missing a
// contractually required field. It indicates a broken service, not a data
// problem, and is fatal to the run.
type SchemaError struct {
	URL   string
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("video data for %q is missing required field %q", e.URL, e.Field)
}

// Resolver builds the shared video index for a run by fetching every
// unique normalized URL exactly once.
type Resolver struct {
	fetcher *fetch.Fetcher
	log     *log.Logger
	limit   int
}

// NewResolver creates a Resolver. A limit <= 0 uses the default; a nil
// logger discards output.
func NewResolver(f *fetch.Fetcher, logger *log.Logger, limit int) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	return &Resolver{fetcher: f, log: logger, limit: limit}
}

// Resolve fetches every unique normalized URL across the ballots and
// returns the index mapping normalized URL to Video. Per-URL fetch
// failures degrade to dataless tagged Videos and never abort sibling
// fetches; only a schema violation fails the run.
func (r *Resolver) Resolve(ctx context.Context, ballots []*model.Ballot) (model.Index, error) {
	runID := uuid.NewString()

	var urls []string
	seen := make(map[string]bool)
	for _, b := range ballots {
		for _, vote := range b.Votes {
			u := NormalizeURL(vote.URL)
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	r.log.Info("resolving ballots", "run", runID, "ballots", len(ballots), "unique_urls", len(urls))

	index := make(model.Index, len(urls))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.limit)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			v, err := r.resolveOne(ctx, u)
			if err != nil {
				return err
			}
			mu.Lock()
			index[u] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for label, n := range summarize(index) {
		r.log.Info("resolution summary", "run", runID, "result", label, "videos", n)
	}
	return index, nil
}

// resolveOne fetches a single URL, mapping each failure kind to its
// dataless tagged Video. Only schema violations surface as errors.
func (r *Resolver) resolveOne(ctx context.Context, url string) (*model.Video, error) {
	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		v := model.NewVideo(nil)
		var unsupported *fetch.UnsupportedHostError
		var unavailable *fetch.VideoUnavailableError
		switch {
		case errors.As(err, &unsupported):
			v.Annotations.Add(model.TagUnsupportedHost)
		case errors.As(err, &unavailable):
			v.Annotations.Add(model.TagVideoUnavailable)
		default:
			v.Annotations.Add(model.TagCouldNotFetch)
		}
		r.log.Warn("fetch failed", "url", url, "result", v.Annotations.Label(), "err", err)
		return v, nil
	}
	if field := missingField(data); field != "" {
		return nil, &SchemaError{URL: url, Field: field}
	}
	return model.NewVideo(&data), nil
}

// missingField checks the required-field contract every fetch service
// must satisfy for a successful fetch. Zero is a legal duration: static
// images and text posts resolve with no runtime at all.
func missingField(data model.VideoData) string {
	switch {
	case data.Title == "":
		return "title"
	case data.Uploader == "":
		return "uploader"
	case data.UploadDate.IsZero():
		return "upload date"
	case data.Duration < 0:
		return "duration"
	}
	return ""
}

// summarize counts videos by resulting label, with "successful" standing
// in for the unannotated.
func summarize(index model.Index) map[string]int {
	counts := make(map[string]int)
	for _, v := range index {
		label := v.Annotations.Label()
		if label == "" {
			label = "successful"
		}
		counts[label]++
	}
	return counts
}
