// Package config loads the run configuration and the uploader list files.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the per-run configuration, loaded from a JSON file. Values not
// present in the file keep their defaults; the API key comes from the
// environment, never from the file.
type Config struct {
	// Target voting month.
	Year  int `json:"year"`
	Month int `json:"month"`

	// Input/output paths.
	VotesFile     string `json:"votes_file"`
	AnnotatedFile string `json:"annotated_file"`
	TallyFile     string `json:"tally_file"`

	// List files, newline-delimited. Empty means the corresponding
	// check is skipped.
	BlacklistFile       string `json:"blacklist_file"`
	WhitelistFile       string `json:"whitelist_file"`
	AcceptedDomainsFile string `json:"accepted_domains_file"`

	// Response cache database. Empty disables caching.
	CachePath string `json:"cache_path"`

	// Hosts treated as URL shorteners and resolved before dispatch.
	ShortenerHosts []string `json:"shortener_hosts"`

	TopN       int    `json:"top_n"`
	VoteSlots  int    `json:"vote_slots"`
	FetchLimit int    `json:"fetch_limit"`
	LogLevel   string `json:"log_level"`
	LogDir     string `json:"log_dir"`

	// YouTubeAPIKey is populated from the YOUTUBE_API_KEY environment
	// variable.
	YouTubeAPIKey string `json:"-"`
}

// Default returns the configuration defaults for the current month.
func Default() *Config {
	now := time.Now().UTC()
	return &Config{
		Year:       now.Year(),
		Month:      int(now.Month()),
		TopN:       10,
		VoteSlots:  10,
		FetchLimit: 5,
		LogLevel:   "info",
	}
}

// Load reads a JSON config file over the defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month %d out of range", c.Month)
	}
	if c.Year < 2000 {
		return fmt.Errorf("year %d out of range", c.Year)
	}
	if c.VotesFile == "" {
		return fmt.Errorf("votes_file is required")
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive")
	}
	if c.VoteSlots < 1 {
		return fmt.Errorf("vote_slots must be positive")
	}
	return nil
}

// LoadList reads a newline-delimited list file into a membership set.
// Blank lines and lines starting with '#' are ignored.
func LoadList(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading list: %w", err)
	}
	defer f.Close()

	set := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading list %s: %w", path, err)
	}
	return set, nil
}
