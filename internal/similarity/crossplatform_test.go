package similarity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openballot/tally/internal/model"
)

func video(title, uploader string, duration float64) *model.Video {
	return model.NewVideo(&model.VideoData{
		Title:      title,
		Uploader:   uploader,
		UploadDate: time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC),
		Duration:   duration,
		Platform:   "test",
	})
}

func TestDetectCrossPlatformIdenticalPair(t *testing.T) {
	index := model.Index{
		"https://a.example/1": video("AAAAA", "EEEEE", 60),
		"https://b.example/2": video("AAAAA", "EEEEE", 60),
	}

	got := DetectCrossPlatform(index)

	require.Len(t, got, 2)
	require.Equal(t, []Property{PropTitle, PropUploader, PropDuration},
		got["https://a.example/1"]["https://b.example/2"])
	require.Equal(t, []Property{PropTitle, PropUploader, PropDuration},
		got["https://b.example/2"]["https://a.example/1"])
}

func TestDetectCrossPlatformDurationOnlyIsNoise(t *testing.T) {
	// Same duration, nothing else in common: must never surface.
	index := model.Index{
		"https://a.example/1": video("AAAAA", "EEEEE", 60),
		"https://b.example/2": video("ZZZZZ", "QQQQQ", 60),
	}

	got := DetectCrossPlatform(index)
	require.Empty(t, got)
}

func TestDetectCrossPlatformTitleAndDuration(t *testing.T) {
	// Matching title and duration but different uploaders survives.
	index := model.Index{
		"https://a.example/1": video("Same Title", "alice", 60),
		"https://b.example/2": video("Same Title", "bob", 62),
	}

	got := DetectCrossPlatform(index)
	require.Equal(t, []Property{PropTitle, PropDuration},
		got["https://a.example/1"]["https://b.example/2"])
}

func TestDetectCrossPlatformUploaderAndDurationDiscarded(t *testing.T) {
	// Without a title match, uploader+duration is not trusted.
	index := model.Index{
		"https://a.example/1": video("Completely Different", "alice", 60),
		"https://b.example/2": video("Nothing Alike Here!!", "alice", 60),
	}

	got := DetectCrossPlatform(index)
	require.Empty(t, got)
}

func TestDetectCrossPlatformSkipsDatalessVideos(t *testing.T) {
	index := model.Index{
		"https://a.example/1": video("AAAAA", "EEEEE", 60),
		"https://b.example/2": model.NewVideo(nil),
	}

	got := DetectCrossPlatform(index)
	require.Empty(t, got)
}
