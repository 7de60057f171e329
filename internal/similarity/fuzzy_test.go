package similarity

import (
	"reflect"
	"testing"
	"time"

	"github.com/openballot/tally/internal/model"
)

func fuzzyIndex(entries map[string]*model.VideoData) model.Index {
	idx := make(model.Index)
	for url, data := range entries {
		idx[url] = model.NewVideo(data)
	}
	return idx
}

func identity(s string) string { return s }

func TestFlagVotesNoSimilarity(t *testing.T) {
	idx := fuzzyIndex(map[string]*model.VideoData{
		"a": {Title: "Winter Wrap Up", Uploader: "alice", Duration: 60, UploadDate: time.Now()},
		"b": {Title: "Something Else Entirely", Uploader: "bob", Duration: 200, UploadDate: time.Now()},
	})
	votes := []*model.Vote{{URL: "a"}, {URL: "b"}}

	got := FlagVotes(votes, identity, idx)
	if len(got) != 0 {
		t.Errorf("FlagVotes() = %v, want no flags", got)
	}
}

func TestFlagVotesTitleGroup(t *testing.T) {
	idx := fuzzyIndex(map[string]*model.VideoData{
		"a": {Title: "Spring Melody", Uploader: "alice", Duration: 60, UploadDate: time.Now()},
		"b": {Title: "Spring Melodyy", Uploader: "bob", Duration: 200, UploadDate: time.Now()},
		"c": {Title: "Unrelated Thing", Uploader: "carol", Duration: 500, UploadDate: time.Now()},
	})
	votes := []*model.Vote{{URL: "a"}, {URL: "b"}, {URL: "c"}}

	got := FlagVotes(votes, identity, idx)

	want := map[int][]Property{
		0: {PropTitle},
		1: {PropTitle},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlagVotes() = %v, want %v", got, want)
	}
}

func TestFlagVotesMultipleProperties(t *testing.T) {
	idx := fuzzyIndex(map[string]*model.VideoData{
		"a": {Title: "Spring Melody", Uploader: "alice", Duration: 60, UploadDate: time.Now()},
		"b": {Title: "Spring Melody", Uploader: "alice", Duration: 60, UploadDate: time.Now()},
	})
	votes := []*model.Vote{{URL: "a"}, {URL: "b"}}

	got := FlagVotes(votes, identity, idx)

	want := map[int][]Property{
		0: {PropTitle, PropUploader, PropDuration},
		1: {PropTitle, PropUploader, PropDuration},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FlagVotes() = %v, want %v", got, want)
	}
}

func TestFlagVotesSkipsDatalessVotes(t *testing.T) {
	idx := fuzzyIndex(map[string]*model.VideoData{
		"a": {Title: "Spring Melody", Uploader: "alice", Duration: 60, UploadDate: time.Now()},
	})
	idx["b"] = model.NewVideo(nil)
	votes := []*model.Vote{{URL: "a"}, {URL: "b"}}

	got := FlagVotes(votes, identity, idx)
	if len(got) != 0 {
		t.Errorf("FlagVotes() = %v, want no flags (single data-bearing vote)", got)
	}
}
