// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the search service:
// candidates, feature vectors, ranking weights, history entries, and
// stage configuration.
package types

import (
	"fmt"
	"time"
)

// ResultType is the closed category tag distinguishing candidate kinds.
type ResultType string

const (
	ResultTypeTask        ResultType = "task"
	ResultTypeProject     ResultType = "project"
	ResultTypeGrant       ResultType = "grant"
	ResultTypePublication ResultType = "publication"
	ResultTypeNavigation  ResultType = "navigation"
	ResultTypeAction      ResultType = "action"
)

// AllResultTypes lists every valid ResultType in display order.
var AllResultTypes = []ResultType{
	ResultTypeTask,
	ResultTypeProject,
	ResultTypeGrant,
	ResultTypePublication,
	ResultTypeNavigation,
	ResultTypeAction,
}

// ParseResultType validates a raw string against the closed enum.
func ParseResultType(s string) (ResultType, error) {
	for _, t := range AllResultTypes {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid result type: %q", s)
}

// Valid reports whether t is a member of the closed enum.
func (t ResultType) Valid() bool {
	_, err := ParseResultType(string(t))
	return err == nil
}

// Candidate is a heterogeneous searchable entity before scoring. Candidates
// from different sources are only comparable through the feature vector.
type Candidate struct {
	// ID is the stable entity identifier within its source.
	ID string `json:"id" yaml:"id"`

	// Type is the candidate's result category.
	Type ResultType `json:"type" yaml:"type"`

	// Title is the display title matched against the query.
	Title string `json:"title" yaml:"title"`

	// Description is optional free-text detail.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Status, Category, and Priority carry optional source-specific attributes.
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Priority string `json:"priority,omitempty" yaml:"priority,omitempty"`

	// UpdatedAt is the entity's last-modified timestamp. Zero means unknown.
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`

	// WorkspaceID scopes the entity to a workspace.
	WorkspaceID string `json:"workspace_id,omitempty" yaml:"workspace_id,omitempty"`
}

// FeatureVector holds the numeric signals computed for a candidate against
// a query: relevance, personalization, temporal, and contextual signals
// plus one-hot type indicators.
type FeatureVector struct {
	TitleExactMatch     float64 `json:"title_exact_match"`
	TitleTokenOverlap   float64 `json:"title_token_overlap"`
	CharNgramSimilarity float64 `json:"char_ngram_similarity"`
	TitleLength         float64 `json:"title_length"`
	TitleWordCount      float64 `json:"title_word_count"`

	UserPreviouslySelected float64 `json:"user_previously_selected"`
	UserTypePreference     float64 `json:"user_type_preference"`

	DaysSinceUpdate float64 `json:"days_since_update"`
	UpdatedThisWeek float64 `json:"updated_this_week"`

	TypeMatchesContext float64 `json:"type_matches_context"`

	TypeTask        float64 `json:"type_task"`
	TypeProject     float64 `json:"type_project"`
	TypeGrant       float64 `json:"type_grant"`
	TypePublication float64 `json:"type_publication"`
	TypeNavigation  float64 `json:"type_navigation"`
}

// ScoredResult is a candidate with its ranking score and the feature vector
// that produced it. The features are kept for explainability and debugging.
type ScoredResult struct {
	Candidate
	Score    float64       `json:"_score"`
	Features FeatureVector `json:"_features"`
}

// RankingWeights are the linear coefficients combined with a FeatureVector
// to produce a score. Weights are read-only once constructed and safe to
// share across concurrent searches.
type RankingWeights struct {
	TitleExactMatch     float64 `json:"title_exact_match" yaml:"title_exact_match"`
	TitleTokenOverlap   float64 `json:"title_token_overlap" yaml:"title_token_overlap"`
	CharNgramSimilarity float64 `json:"char_ngram_similarity" yaml:"char_ngram_similarity"`

	UserPreviouslySelected float64 `json:"user_previously_selected" yaml:"user_previously_selected"`
	UserTypePreference     float64 `json:"user_type_preference" yaml:"user_type_preference"`

	UpdatedThisWeek    float64 `json:"updated_this_week" yaml:"updated_this_week"`
	TypeMatchesContext float64 `json:"type_matches_context" yaml:"type_matches_context"`

	// Penalties. Title length and staleness carry negative coefficients.
	TitleLength     float64 `json:"title_length" yaml:"title_length"`
	DaysSinceUpdate float64 `json:"days_since_update" yaml:"days_since_update"`
}

// DefaultRankingWeights returns the manually tuned production weights.
func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		TitleExactMatch:        5.0,
		TitleTokenOverlap:      3.0,
		CharNgramSimilarity:    1.5,
		UserPreviouslySelected: 2.0,
		UserTypePreference:     1.0,
		UpdatedThisWeek:        0.5,
		TypeMatchesContext:     1.5,
		TitleLength:            -0.01,
		DaysSinceUpdate:        -0.005,
	}
}

// PersonalizationSignal is the per-user data derived from search history:
// titles of previously selected results (lowercased) and a per-type
// selection frequency normalized so the most-preferred type scores 1.0.
// The zero value is the signal for a user with no history.
type PersonalizationSignal struct {
	SelectedTitles map[string]struct{}
	TypePreference map[ResultType]float64
}

// PreviouslySelected reports whether the user has selected a result with
// the given normalized title before.
func (s PersonalizationSignal) PreviouslySelected(normalizedTitle string) bool {
	_, ok := s.SelectedTitles[normalizedTitle]
	return ok
}

// PreferenceFor returns the normalized selection frequency for a type,
// folding action selections into navigation.
func (s PersonalizationSignal) PreferenceFor(t ResultType) float64 {
	if t == ResultTypeAction {
		t = ResultTypeNavigation
	}
	return s.TypePreference[t]
}
