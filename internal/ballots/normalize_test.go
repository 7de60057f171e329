package ballots

import "testing"

func TestNormalizeURL(t *testing.T) {
	const canonical = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	tests := []struct {
		in   string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", canonical},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", canonical},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", canonical},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", canonical},
		{"  https://youtu.be/dQw4w9WgXcQ  ", canonical},
		// Non-YouTube URLs pass through trimmed.
		{" https://derpibooru.org/images/123 ", "https://derpibooru.org/images/123"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
