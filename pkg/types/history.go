// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HistorySource identifies the UI surface a search originated from.
type HistorySource string

const (
	HistorySourceCommandPalette HistorySource = "command_palette"
	HistorySourceQuickSearch    HistorySource = "quick_search"
	HistorySourceNavigation     HistorySource = "navigation"
)

// ParseHistorySource validates a raw string against the source enum.
// An empty string maps to the command palette default.
func ParseHistorySource(s string) (HistorySource, error) {
	switch HistorySource(s) {
	case "":
		return HistorySourceCommandPalette, nil
	case HistorySourceCommandPalette, HistorySourceQuickSearch, HistorySourceNavigation:
		return HistorySource(s), nil
	}
	return "", fmt.Errorf("invalid history source: %q", s)
}

// SearchHistoryEntry is a persisted per-user search event. Entries are
// immutable once written; only bulk deletion removes them.
type SearchHistoryEntry struct {
	ID int64 `json:"id" yaml:"id"`

	UserID      string `json:"user_id" yaml:"user_id"`
	WorkspaceID string `json:"workspace_id,omitempty" yaml:"workspace_id,omitempty"`

	// Query is the raw text the user typed; NormalizedQuery is its
	// canonical form used for deduplication and recency comparisons.
	Query           string `json:"query" yaml:"query"`
	NormalizedQuery string `json:"normalized_query" yaml:"normalized_query"`

	// ResultType, ResultID, and ResultTitle describe the selected result.
	// All three are empty when the query was recorded without a selection.
	ResultType  ResultType `json:"result_type,omitempty" yaml:"result_type,omitempty"`
	ResultID    string     `json:"result_id,omitempty" yaml:"result_id,omitempty"`
	ResultTitle string     `json:"result_title,omitempty" yaml:"result_title,omitempty"`

	Source   HistorySource `json:"source" yaml:"source"`
	Selected bool          `json:"selected" yaml:"selected"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RecentSearch is one row of the deduplicated recent-searches view:
// repeated identical searches collapse to their normalized query with the
// most recent timestamp.
type RecentSearch struct {
	Query           string     `json:"query"`
	NormalizedQuery string     `json:"normalized_query"`
	ResultType      ResultType `json:"result_type,omitempty"`
	ResultTitle     string     `json:"result_title,omitempty"`
	Selected        bool       `json:"selected"`
	LastSearchedAt  time.Time  `json:"last_searched_at"`
}
