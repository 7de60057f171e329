package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openballot/tally/internal/model"
)

// capability probes used at registration. Services are checked method by
// method so a misconfigured service fails at setup with a message naming the
// missing capability, not at call time.
type urlMatcher interface {
	CanFetch(url string) bool
}

type requester interface {
	Request(ctx context.Context, url string) (*RawResponse, error)
}

type parser interface {
	Parse(raw *RawResponse) (model.VideoData, error)
}

type registration struct {
	name string
	svc  Service
}

// Fetcher routes a URL to exactly one capable service, consults the optional
// raw-response cache, and reports activity through its logger. It holds no
// ambient state: registry, cache, and logger are all supplied at
// construction.
type Fetcher struct {
	services []registration
	cache    Cache
	log      *log.Logger
}

// NewFetcher creates a Fetcher. cache may be nil to disable caching; logger
// may be nil to discard operator-visibility output.
func NewFetcher(cache Cache, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{cache: cache, log: logger}
}

// AddService registers a fetch service under a name. Registration order is
// the dispatch tie-break: when several services can fetch the same URL, the
// first registered wins. A service missing any of the three required
// capabilities is a configuration error.
func (f *Fetcher) AddService(name string, svc any) error {
	if name == "" {
		return fmt.Errorf("fetch service registered without a name")
	}
	if _, ok := svc.(urlMatcher); !ok {
		return fmt.Errorf("fetch service %q does not implement CanFetch", name)
	}
	if _, ok := svc.(requester); !ok {
		return fmt.Errorf("fetch service %q does not implement Request", name)
	}
	if _, ok := svc.(parser); !ok {
		return fmt.Errorf("fetch service %q does not implement Parse", name)
	}
	f.services = append(f.services, registration{name: name, svc: svc.(Service)})
	return nil
}

// ServiceFor returns the first registered service that can fetch the URL.
func (f *Fetcher) ServiceFor(url string) (string, Service, bool) {
	for _, reg := range f.services {
		if reg.svc.CanFetch(url) {
			return reg.name, reg.svc, true
		}
	}
	return "", nil, false
}

// Fetch resolves a URL to video metadata.
//
// Request errors and parse errors propagate unchanged; retries, if any,
// belong inside the individual service. A cache hit skips Request but Parse
// always runs. Failing to store a response in the cache logs a warning and
// never fails the fetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (model.VideoData, error) {
	name, svc, ok := f.ServiceFor(url)
	if !ok {
		return model.VideoData{}, &UnsupportedHostError{URL: url}
	}

	raw, hit, err := f.cached(name, url)
	if err != nil {
		f.log.Warn("cache lookup failed", "service", name, "url", url, "error", err)
	}

	fresh := false
	if hit {
		f.log.Debug("cache hit", "service", name, "url", url)
	} else {
		f.log.Debug("requesting", "service", name, "url", url)
		raw, err = svc.Request(ctx, url)
		if err != nil {
			f.log.Warn("request failed", "service", name, "url", url, "error", err)
			return model.VideoData{}, err
		}
		fresh = true
	}

	data, err := svc.Parse(raw)
	if err != nil {
		f.log.Warn("parse failed", "service", name, "url", url, "error", err)
		return model.VideoData{}, err
	}

	if fresh && f.cache != nil {
		if raw.FetchedAt.IsZero() {
			raw.FetchedAt = time.Now()
		}
		if err := f.cache.Put(name, url, raw); err != nil {
			f.log.Warn("could not cache response", "service", name, "url", url, "error", err)
		}
	}

	return data, nil
}

func (f *Fetcher) cached(service, url string) (*RawResponse, bool, error) {
	if f.cache == nil {
		return nil, false, nil
	}
	return f.cache.Get(service, url)
}
