package rules

import (
	"github.com/openballot/tally/internal/model"
	"github.com/openballot/tally/internal/similarity"
)

// minUniqueUploaders is the uploader-diversity floor: a ballot drawing on
// fewer distinct channels has every vote penalized.
const minUniqueUploaders = 5

// maxVotesPerUploader is the occurrence ceiling: an uploader taking this
// many or more of one ballot's votes marks all of that uploader's votes.
const maxVotesPerUploader = 3

// AnnotateBallots runs the vote-level annotators over every ballot, in a
// fixed order. The index must already contain an entry for every vote's
// normalized URL; video-level checks must already have run, since several
// vote annotations are inherited from the shared Video entries.
func AnnotateBallots(ballots []*model.Ballot, index model.Index, normalize func(string) string) {
	for _, b := range ballots {
		checkUploaderDiversity(b, index, normalize)
		propagate(b, index, normalize, model.TagBlacklisted)
		checkDuplicateVotes(b, normalize)
		propagate(b, index, normalize, model.TagVideoTooOld, model.TagVideoTooNew)
		propagate(b, index, normalize, model.TagVideoTooShort, model.TagVideoMaybeTooShort)
		checkUploaderOccurrence(b, index, normalize)
		checkVoteSimilarity(b, index, normalize)
		propagate(b, index, normalize, model.TagNotWhitelisted, model.TagDomainNotAccepted)
	}
}

// checkUploaderDiversity applies the all-or-nothing channel rule: fewer
// than five distinct uploaders (counting data-bearing votes only) penalizes
// every vote on the ballot, dataless ones included.
func checkUploaderDiversity(b *model.Ballot, index model.Index, normalize func(string) string) {
	uploaders := make(map[string]bool)
	for _, vote := range b.Votes {
		if v, ok := index[normalize(vote.URL)]; ok && v.HasData() {
			uploaders[v.Data.Uploader] = true
		}
	}
	if len(uploaders) >= minUniqueUploaders {
		return
	}
	for _, vote := range b.Votes {
		vote.Annotations.Add(model.TagFiveChannelRule)
	}
}

// propagate copies the listed tags from each vote's resolved Video onto the
// vote itself.
func propagate(b *model.Ballot, index model.Index, normalize func(string) string, tags ...string) {
	for _, vote := range b.Votes {
		v, ok := index[normalize(vote.URL)]
		if !ok {
			continue
		}
		for _, tag := range tags {
			if v.Annotations.Has(tag) {
				vote.Annotations.Add(tag)
			}
		}
	}
}

// checkDuplicateVotes flags the second and later occurrences of a URL
// within one ballot. The first occurrence is never flagged.
func checkDuplicateVotes(b *model.Ballot, normalize func(string) string) {
	seen := make(map[string]bool)
	for _, vote := range b.Votes {
		u := normalize(vote.URL)
		if seen[u] {
			vote.Annotations.Add(model.TagDuplicateVideo)
			continue
		}
		seen[u] = true
	}
}

// checkUploaderOccurrence flags every vote by an uploader who takes three
// or more of the ballot's votes.
func checkUploaderOccurrence(b *model.Ballot, index model.Index, normalize func(string) string) {
	counts := make(map[string]int)
	for _, vote := range b.Votes {
		if v, ok := index[normalize(vote.URL)]; ok && v.HasData() {
			counts[v.Data.Uploader]++
		}
	}
	for _, vote := range b.Votes {
		v, ok := index[normalize(vote.URL)]
		if !ok || !v.HasData() {
			continue
		}
		if counts[v.Data.Uploader] >= maxVotesPerUploader {
			vote.Annotations.Add(model.TagDuplicateCreator)
		}
	}
}

// checkVoteSimilarity runs the intra-ballot fuzzy sweep and annotates each
// flagged vote once, naming every property that matched.
func checkVoteSimilarity(b *model.Ballot, index model.Index, normalize func(string) string) {
	flagged := similarity.FlagVotes(b.Votes, normalize, index)
	for pos, props := range flagged {
		b.Votes[pos].Annotations.Add(similarity.SimilarityTag(props))
	}
}
