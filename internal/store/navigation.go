// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"strings"

	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/pkg/types"
)

// navigationItems is the fixed registry of navigable pages and quick
// actions. These are not workspace entities; they carry no update
// timestamp and are available in every workspace.
var navigationItems = []types.Candidate{
	{ID: "nav-today", Type: types.ResultTypeNavigation, Title: "Today", Description: "Tasks due today", Category: "/today"},
	{ID: "nav-upcoming", Type: types.ResultTypeNavigation, Title: "Upcoming", Description: "Tasks due this week", Category: "/upcoming"},
	{ID: "nav-board", Type: types.ResultTypeNavigation, Title: "Board", Description: "Kanban task board", Category: "/board"},
	{ID: "nav-list", Type: types.ResultTypeNavigation, Title: "Task list", Description: "All tasks as a list", Category: "/list"},
	{ID: "nav-calendar", Type: types.ResultTypeNavigation, Title: "Calendar", Description: "Tasks on a calendar", Category: "/calendar"},
	{ID: "nav-projects", Type: types.ResultTypeNavigation, Title: "Projects", Description: "All projects", Category: "/projects"},
	{ID: "nav-grants", Type: types.ResultTypeNavigation, Title: "Grants", Description: "Grant tracking", Category: "/grants"},
	{ID: "nav-publications", Type: types.ResultTypeNavigation, Title: "Publications", Description: "Publication list", Category: "/publications"},
	{ID: "nav-settings", Type: types.ResultTypeNavigation, Title: "Settings", Description: "Workspace settings", Category: "/settings"},
	{ID: "act-new-task", Type: types.ResultTypeAction, Title: "Create task", Description: "Add a new task"},
	{ID: "act-new-project", Type: types.ResultTypeAction, Title: "Create project", Description: "Start a new project"},
	{ID: "act-new-grant", Type: types.ResultTypeAction, Title: "Add grant", Description: "Track a new grant"},
	{ID: "act-invite", Type: types.ResultTypeAction, Title: "Invite member", Description: "Invite someone to the workspace"},
	{ID: "act-clear-history", Type: types.ResultTypeAction, Title: "Clear search history", Description: "Delete your recent searches"},
}

// NavigationSource serves the static registry. It implements the same
// Source contract as the database-backed fetchers so the engine treats
// all sources uniformly.
type NavigationSource struct {
	items []types.Candidate
	cap   int
}

// NewNavigationSource builds the registry source with the shared
// per-source cap.
func NewNavigationSource(cap int) *NavigationSource {
	if cap <= 0 {
		cap = defaultSourceCap
	}
	return &NavigationSource{items: navigationItems, cap: cap}
}

// Type returns navigation; the registry also yields action candidates,
// which the engine groups with navigation.
func (s *NavigationSource) Type() types.ResultType { return types.ResultTypeNavigation }

// Fetch returns registry items whose title or description matches the
// query text or shares a query token.
func (s *NavigationSource) Fetch(_ context.Context, query search.Query, _ search.Scope) ([]types.Candidate, error) {
	var matches []types.Candidate
	for _, item := range s.items {
		if len(matches) >= s.cap {
			break
		}
		if navMatches(query, item) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func navMatches(query search.Query, item types.Candidate) bool {
	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)
	if strings.Contains(title, query.Normalized) || strings.Contains(description, query.Normalized) {
		return true
	}
	for _, token := range query.Tokens {
		if strings.Contains(title, token) || strings.Contains(description, token) {
			return true
		}
	}
	return false
}
