package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"year": 2024,
		"month": 4,
		"votes_file": "votes.csv",
		"accepted_domains_file": "domains.txt"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Year != 2024 || cfg.Month != 4 {
		t.Errorf("target month = %d/%d", cfg.Month, cfg.Year)
	}
	if cfg.TopN != 10 {
		t.Errorf("TopN default = %d, want 10", cfg.TopN)
	}
	if cfg.VoteSlots != 10 {
		t.Errorf("VoteSlots default = %d, want 10", cfg.VoteSlots)
	}
	if cfg.FetchLimit != 5 {
		t.Errorf("FetchLimit default = %d, want 5", cfg.FetchLimit)
	}
	if cfg.AcceptedDomainsFile != "domains.txt" {
		t.Errorf("AcceptedDomainsFile = %q", cfg.AcceptedDomainsFile)
	}
}

func TestLoadReadsAPIKeyFromEnv(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "test-key")
	path := writeFile(t, "config.json", `{"year": 2024, "month": 4, "votes_file": "v.csv"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.YouTubeAPIKey != "test-key" {
		t.Errorf("YouTubeAPIKey = %q", cfg.YouTubeAPIKey)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"month out of range", `{"year": 2024, "month": 13, "votes_file": "v.csv"}`},
		{"missing votes file", `{"year": 2024, "month": 4}`},
		{"non-positive top n", `{"year": 2024, "month": 4, "votes_file": "v.csv", "top_n": 0}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		path := writeFile(t, "config.json", tt.body)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: Load() should fail", tt.name)
		}
	}
}

func TestLoadList(t *testing.T) {
	path := writeFile(t, "blacklist.txt", "alpha\n\n# a comment\n  beta  \n")

	set, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList() error: %v", err)
	}
	if len(set) != 2 || !set["alpha"] || !set["beta"] {
		t.Errorf("set = %v, want {alpha, beta}", set)
	}
}
