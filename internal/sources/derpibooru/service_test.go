package derpibooru

import (
	"errors"
	"testing"

	"github.com/openballot/tally/internal/fetch"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://derpibooru.org/images/2951911", "2951911"},
		{"https://derpibooru.org/2951911", "2951911"},
		{"https://www.derpibooru.org/images/2951911-spring-melody", "2951911"},
	}
	for _, tt := range tests {
		got, err := ExtractID(tt.url)
		if err != nil {
			t.Errorf("ExtractID(%q) error: %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	for _, bad := range []string{
		"https://derpibooru.org/tags/animated",
		"https://derpibooru.org/",
	} {
		if _, err := ExtractID(bad); err == nil {
			t.Errorf("ExtractID(%q) succeeded, want error", bad)
		}
	}
}

func TestParseSynthesizesTitle(t *testing.T) {
	svc := New(0)
	body := []byte(`{"image":{"id":123,"uploader":"somepony","created_at":"2024-04-02T10:00:00","duration":72.5,"sha512_hash":"abcdef"}}`)

	data, err := svc.Parse(&fetch.RawResponse{Body: body})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if data.Uploader != "somepony" {
		t.Errorf("uploader = %q", data.Uploader)
	}
	if data.Duration != 72.5 {
		t.Errorf("duration = %v", data.Duration)
	}
	want := SynthesizeTitle("somepony", "abcdef")
	if data.Title != want {
		t.Errorf("title = %q, want %q", data.Title, want)
	}
	if data.UploadDate.Location().String() != "UTC" {
		t.Errorf("bare created_at should be assumed UTC, got %v", data.UploadDate.Location())
	}
}

func TestParseDistinctPostsBySameUploaderGetDistinctTitles(t *testing.T) {
	a := SynthesizeTitle("somepony", "hash-one")
	b := SynthesizeTitle("somepony", "hash-two")
	if a == b {
		t.Error("distinct posts by the same uploader must not share a synthesized title")
	}
}

func TestParseMissingFields(t *testing.T) {
	svc := New(0)
	_, err := svc.Parse(&fetch.RawResponse{Body: []byte(`{"image":{"id":1}}`)})

	var parseErr *fetch.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %v, want *fetch.ParseError", err)
	}
}
