// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/pkg/types"
)

const defaultSourceCap = 25

// entitySource fetches candidates of one result type from its table.
type entitySource struct {
	db         *sql.DB
	resultType types.ResultType
	table      string
	cap        int
}

// NewSources builds the fixed source table the engine fans out to: the
// four entity-backed sources plus the navigation registry. cap bounds
// candidates per source; zero means the default.
func NewSources(db *sql.DB, cap int) []search.Source {
	if cap <= 0 {
		cap = defaultSourceCap
	}
	return []search.Source{
		&entitySource{db: db, resultType: types.ResultTypeTask, table: "tasks", cap: cap},
		&entitySource{db: db, resultType: types.ResultTypeProject, table: "projects", cap: cap},
		&entitySource{db: db, resultType: types.ResultTypeGrant, table: "grants", cap: cap},
		&entitySource{db: db, resultType: types.ResultTypePublication, table: "publications", cap: cap},
		NewNavigationSource(cap),
	}
}

// Type returns the result category this source serves.
func (s *entitySource) Type() types.ResultType { return s.resultType }

// Fetch returns up to the source cap of candidates whose title or
// description matches the query, scoped to the caller's workspace when
// one is given. Ordering is by recency only as a tie-breaker for the cap;
// the engine re-ranks everything.
func (s *entitySource) Fetch(ctx context.Context, query search.Query, scope search.Scope) ([]types.Candidate, error) {
	sel := fmt.Sprintf(
		`SELECT id, workspace_id, title, description, status, category, priority, updated_at
		 FROM %s
		 WHERE (lower(title) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\')`, s.table)
	pattern := "%" + escapeLike(query.Normalized) + "%"
	args := []any{pattern, pattern}

	if scope.WorkspaceID != "" {
		sel += ` AND workspace_id = ?`
		args = append(args, scope.WorkspaceID)
	}
	sel += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, s.cap)

	rows, err := s.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	var candidates []types.Candidate
	for rows.Next() {
		var (
			c           types.Candidate
			description sql.NullString
			status      sql.NullString
			category    sql.NullString
			priority    sql.NullString
			updatedAt   string
		)
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Title, &description,
			&status, &category, &priority, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.table, err)
		}

		c.Type = s.resultType
		c.Description = description.String
		c.Status = status.String
		c.Category = category.String
		c.Priority = priority.String
		if t, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
			c.UpdatedAt = t
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// escapeLike neutralizes LIKE wildcards in user text so query characters
// match literally. Pairs with ESCAPE '\' in the fetch statement.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
