// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scholaros/search-service/pkg/types"
)

// staleDays is the days-since-update value assigned when a candidate has
// no known update timestamp.
const staleDays = 365

// contextExpectedTypes maps the originating page to the result types that
// page is expected to surface. A candidate of an expected type gets a
// contextual boost.
var contextExpectedTypes = map[string][]types.ResultType{
	"/today":        {types.ResultTypeTask},
	"/upcoming":     {types.ResultTypeTask},
	"/board":        {types.ResultTypeTask},
	"/list":         {types.ResultTypeTask},
	"/calendar":     {types.ResultTypeTask},
	"/projects":     {types.ResultTypeProject},
	"/grants":       {types.ResultTypeGrant},
	"/publications": {types.ResultTypePublication},
}

// extractFeatures computes the feature vector for one candidate against a
// query. Pure: no I/O, deterministic given the same inputs and clock.
func extractFeatures(q Query, cand types.Candidate, sig types.PersonalizationSignal, pageContext string, now time.Time) types.FeatureVector {
	var f types.FeatureVector

	normTitle := Normalize(cand.Title)

	if normTitle == q.Normalized {
		f.TitleExactMatch = 1
	}
	f.TitleTokenOverlap = tokenOverlap(q.Tokens, strings.Fields(normTitle))
	f.CharNgramSimilarity = trigramSimilarity(q.Normalized, normTitle)
	f.TitleLength = float64(utf8.RuneCountInString(cand.Title))
	f.TitleWordCount = float64(len(strings.Fields(cand.Title)))

	if sig.PreviouslySelected(normTitle) {
		f.UserPreviouslySelected = 1
	}
	f.UserTypePreference = sig.PreferenceFor(cand.Type)

	if cand.UpdatedAt.IsZero() {
		f.DaysSinceUpdate = staleDays
	} else {
		days := int(now.Sub(cand.UpdatedAt).Hours() / 24)
		if days < 0 {
			days = 0
		}
		f.DaysSinceUpdate = float64(days)
		if days <= 7 {
			f.UpdatedThisWeek = 1
		}
	}

	for _, expected := range contextExpectedTypes[pageContext] {
		if cand.Type == expected {
			f.TypeMatchesContext = 1
			break
		}
	}

	switch cand.Type {
	case types.ResultTypeTask:
		f.TypeTask = 1
	case types.ResultTypeProject:
		f.TypeProject = 1
	case types.ResultTypeGrant:
		f.TypeGrant = 1
	case types.ResultTypePublication:
		f.TypePublication = 1
	case types.ResultTypeNavigation, types.ResultTypeAction:
		f.TypeNavigation = 1
	}

	return f
}

// tokenOverlap returns the fraction of query tokens present in the title,
// 0 when the query has no tokens.
func tokenOverlap(queryTokens, titleTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	titleSet := make(map[string]struct{}, len(titleTokens))
	for _, t := range titleTokens {
		titleSet[t] = struct{}{}
	}
	matched := 0
	for _, t := range queryTokens {
		if _, ok := titleSet[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// trigramSimilarity is the Jaccard similarity of the character trigram
// sets of a and b. Symmetric; strings shorter than three runes yield 0.
func trigramSimilarity(a, b string) float64 {
	sa := trigramSet(a)
	sb := trigramSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	intersection := 0
	for g := range sa {
		if _, ok := sb[g]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	return float64(intersection) / float64(union)
}

func trigramSet(s string) map[string]struct{} {
	runes := []rune(s)
	grams := make(map[string]struct{})
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}
