// Command tally validates a month of video-vote ballots and writes the
// annotated report and Top-N result.
//
// Usage:
//
//	tally -config config.json
//
// The YouTube API key is read from the YOUTUBE_API_KEY environment
// variable; a .env file in the working directory is loaded if present.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/openballot/tally/internal/ballots"
	"github.com/openballot/tally/internal/cache"
	"github.com/openballot/tally/internal/config"
	"github.com/openballot/tally/internal/fetch"
	"github.com/openballot/tally/internal/logging"
	"github.com/openballot/tally/internal/model"
	"github.com/openballot/tally/internal/rank"
	"github.com/openballot/tally/internal/rules"
	"github.com/openballot/tally/internal/similarity"
	"github.com/openballot/tally/internal/sources/derpibooru"
	"github.com/openballot/tally/internal/sources/shortener"
	"github.com/openballot/tally/internal/sources/twitter"
	"github.com/openballot/tally/internal/sources/youtube"
)

const serviceTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "config.json", "path to the run configuration")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "tally:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	if cfg.LogDir != "" {
		fileLogger, closeLog, err := logging.NewFile(cfg.LogDir, logging.ParseLevel(cfg.LogLevel))
		if err != nil {
			return err
		}
		defer closeLog()
		logger = fileLogger
	}
	logger.Info("tally starting", "month", cfg.Month, "year", cfg.Year, "votes", cfg.VotesFile)

	var responseCache fetch.Cache
	if cfg.CachePath != "" {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer store.Close()
		responseCache = store
	}

	fetcher, err := buildFetcher(cfg, responseCache, logger)
	if err != nil {
		return err
	}

	voted, err := ballots.ReadVotesFile(cfg.VotesFile)
	if err != nil {
		return err
	}

	resolver := ballots.NewResolver(fetcher, logger, cfg.FetchLimit)
	index, err := resolver.Resolve(context.Background(), voted)
	if err != nil {
		return err
	}

	if err := annotate(cfg, index, voted, logger); err != nil {
		return err
	}

	matches := similarity.DetectCrossPlatform(index)
	for url, similar := range matches {
		for other, props := range similar {
			logger.Warn("cross-platform duplicate", "url", url, "match", other, "properties", props)
		}
	}

	if err := writeReports(cfg, voted, index); err != nil {
		return err
	}
	logger.Info("tally complete", "ballots", len(voted), "videos", len(index))
	return nil
}

// buildFetcher registers the fetch services. Registration order is the
// dispatch tie-break, so the shortener goes last: it only claims hosts no
// other service wants.
func buildFetcher(cfg *config.Config, responseCache fetch.Cache, logger *log.Logger) (*fetch.Fetcher, error) {
	fetcher := fetch.NewFetcher(responseCache, logger)

	yt, err := youtube.New(cfg.YouTubeAPIKey)
	if err != nil {
		return nil, err
	}
	if err := fetcher.AddService("youtube", yt); err != nil {
		return nil, err
	}
	if err := fetcher.AddService("derpibooru", derpibooru.New(serviceTimeout)); err != nil {
		return nil, err
	}
	if err := fetcher.AddService("twitter", twitter.New(serviceTimeout)); err != nil {
		return nil, err
	}
	if len(cfg.ShortenerHosts) > 0 {
		short := shortener.New(cfg.ShortenerHosts, yt, serviceTimeout)
		if err := fetcher.AddService("shortener", short); err != nil {
			return nil, err
		}
	}
	return fetcher, nil
}

// annotate runs the video-level checks and then the ballot annotators.
func annotate(cfg *config.Config, index model.Index, voted []*model.Ballot, logger *log.Logger) error {
	lower, upper := rules.LenientMonthWindow(cfg.Year, time.Month(cfg.Month))
	rules.CheckUploadDates(index, lower, upper)
	rules.CheckDurations(index)

	if cfg.BlacklistFile != "" {
		blacklist, err := config.LoadList(cfg.BlacklistFile)
		if err != nil {
			return err
		}
		rules.CheckBlacklist(index, blacklist)
	}
	if cfg.WhitelistFile != "" {
		whitelist, err := config.LoadList(cfg.WhitelistFile)
		if err != nil {
			return err
		}
		rules.CheckWhitelist(index, whitelist)
	}
	if cfg.AcceptedDomainsFile != "" {
		accepted, err := config.LoadList(cfg.AcceptedDomainsFile)
		if err != nil {
			return err
		}
		rules.CheckAcceptedDomains(index, accepted)
	}

	rules.AnnotateBallots(voted, index, ballots.NormalizeURL)
	logger.Info("ballots annotated", "ballots", len(voted))
	return nil
}

func writeReports(cfg *config.Config, voted []*model.Ballot, index model.Index) error {
	if cfg.AnnotatedFile != "" {
		f, err := os.Create(cfg.AnnotatedFile)
		if err != nil {
			return fmt.Errorf("creating annotated report: %w", err)
		}
		defer f.Close()
		if err := ballots.WriteAnnotated(f, voted, index, ballots.NormalizeURL, cfg.VoteSlots); err != nil {
			return err
		}
	}
	if cfg.TallyFile != "" {
		f, err := os.Create(cfg.TallyFile)
		if err != nil {
			return fmt.Errorf("creating tally report: %w", err)
		}
		defer f.Close()
		entries := rank.Tally(voted, index, ballots.NormalizeURL, cfg.TopN)
		if err := rank.WriteCSV(f, entries); err != nil {
			return err
		}
	}
	return nil
}
