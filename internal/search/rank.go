// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"sort"
	"strings"

	"github.com/scholaros/search-service/pkg/types"
)

// score computes the weighted linear combination of the feature vector.
// Only the named weights participate; structural features (word count,
// one-hot indicators) carry no weight and do not move the score.
func score(f types.FeatureVector, w types.RankingWeights) float64 {
	s := 0.0
	s += f.TitleExactMatch * w.TitleExactMatch
	s += f.TitleTokenOverlap * w.TitleTokenOverlap
	s += f.CharNgramSimilarity * w.CharNgramSimilarity
	s += f.UserPreviouslySelected * w.UserPreviouslySelected
	s += f.UserTypePreference * w.UserTypePreference
	s += f.UpdatedThisWeek * w.UpdatedThisWeek
	s += f.TypeMatchesContext * w.TypeMatchesContext
	s += f.TitleLength * w.TitleLength
	s += f.DaysSinceUpdate * w.DaysSinceUpdate
	return s
}

// dedupCandidates removes duplicate (type, id) pairs, keeping the first
// occurrence. Runs before scoring so an entity surfaced by two fetch
// passes is scored once.
func dedupCandidates(cands []types.Candidate) ([]types.Candidate, int) {
	seen := make(map[string]struct{}, len(cands))
	deduped := cands[:0:0]
	removed := 0

	for _, c := range cands {
		key := string(c.Type) + ":" + c.ID
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, c)
	}
	return deduped, removed
}

// sortResults orders scored results descending by score. Ties break by
// most-recently-updated first, then title ascending (case-insensitive),
// so identical inputs always produce identical orderings.
func sortResults(results []types.ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}
