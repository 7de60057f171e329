package similarity

import (
	"testing"
)

func TestRatioIdentical(t *testing.T) {
	for _, s := range []string{"", "a", "AAAAA", "pony video", "ünïcødé"} {
		if got := Ratio(s, s); got != 100 {
			t.Errorf("Ratio(%q, %q) = %v, want 100", s, s, got)
		}
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"spring melody", "spring melodies"},
		{"abc", "xyz"},
		{"", "something"},
		{"one two three", "one two"},
	}
	for _, p := range pairs {
		if a, b := Ratio(p[0], p[1]), Ratio(p[1], p[0]); a != b {
			t.Errorf("Ratio(%q, %q) = %v but reversed = %v", p[0], p[1], a, b)
		}
	}
}

func TestRatioRange(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"abc", "xyz", 0, 0},          // nothing in common
		{"abcd", "abcx", 75, 75},      // one substitution of four
		{"night mare", "nightmare", 89, 91},
	}
	for _, tt := range tests {
		got := Ratio(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Ratio(%q, %q) = %v, want in [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestDurationRatio(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{60, 60, 100},
		{60, 65, 0},
		{60, 70, 0}, // floored beyond the window
		{10, 12.5, 50},
		{0, 0, 100},
	}
	for _, tt := range tests {
		if got := DurationRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("DurationRatio(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := DurationRatio(tt.b, tt.a); got != tt.want {
			t.Errorf("DurationRatio(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestSimilarityTag(t *testing.T) {
	tests := []struct {
		props []Property
		want  string
	}{
		{[]Property{PropTitle}, "SIMILARITY DETECTED IN TITLE"},
		{[]Property{PropTitle, PropDuration}, "SIMILARITY DETECTED IN TITLE AND DURATION"},
		{[]Property{PropTitle, PropUploader, PropDuration}, "SIMILARITY DETECTED IN TITLE AND UPLOADER AND DURATION"},
	}
	for _, tt := range tests {
		if got := SimilarityTag(tt.props); got != tt.want {
			t.Errorf("SimilarityTag(%v) = %q, want %q", tt.props, got, tt.want)
		}
	}
}
