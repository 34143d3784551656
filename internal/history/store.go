// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists per-user search events and derives the
// personalization signal that feeds ranking. Entries are write-once:
// they are created on query submission or result selection and removed
// only by bulk clears.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/pkg/types"
)

// signalWindowCap bounds how much history the signal builder reads no
// matter what the configuration asks for.
const signalWindowCap = 200

// createdAtLayout pads fractional seconds to fixed width. RFC3339Nano
// drops trailing zeros, which makes the TEXT column sort out of
// timestamp order under SQL MAX and ORDER BY; a fixed-width form keeps
// lexicographic and chronological order identical.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the search_history table.
type Store struct {
	db  *sql.DB
	cfg types.HistoryConfig
}

// NewStore prepares the history schema on an open database handle.
func NewStore(db *sql.DB, cfg types.HistoryConfig) (*Store, error) {
	def := types.DefaultServiceConfig().History
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Window > signalWindowCap {
		cfg.Window = signalWindowCap
	}
	if cfg.RecentDefaultLimit <= 0 {
		cfg.RecentDefaultLimit = def.RecentDefaultLimit
	}
	if cfg.RecentMaxLimit <= 0 {
		cfg.RecentMaxLimit = def.RecentMaxLimit
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			workspace_id TEXT,
			query TEXT NOT NULL,
			normalized_query TEXT NOT NULL,
			result_type TEXT,
			result_id TEXT,
			result_title TEXT,
			source TEXT NOT NULL DEFAULT 'command_palette',
			selected INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_user
			ON search_history(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_norm
			ON search_history(user_id, normalized_query)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one immutable history entry. The normalized query is
// derived with the same canonicalization live search uses; invalid query
// text or enum values are rejected before touching the database.
func (s *Store) Record(ctx context.Context, entry types.SearchHistoryEntry) error {
	q, err := search.ParseQuery(entry.Query)
	if err != nil {
		return err
	}

	if entry.ResultType != "" && !entry.ResultType.Valid() {
		return fmt.Errorf("%w: unknown result type %q", search.ErrInvalidQuery, entry.ResultType)
	}
	source, err := types.ParseHistorySource(string(entry.Source))
	if err != nil {
		return fmt.Errorf("%w: %v", search.ErrInvalidQuery, err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO search_history
			(user_id, workspace_id, query, normalized_query,
			 result_type, result_id, result_title, source, selected, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, nullable(entry.WorkspaceID), entry.Query, q.Normalized,
		nullable(string(entry.ResultType)), nullable(entry.ResultID),
		nullable(entry.ResultTitle), string(source), entry.Selected,
		createdAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// RecentOptions filters the recent-searches read path.
type RecentOptions struct {
	WorkspaceID  string
	Limit        int
	SelectedOnly bool
}

// Recent returns the user's most recent searches deduplicated by
// normalized query: repeated identical searches collapse to one row with
// the most recent timestamp.
func (s *Store) Recent(ctx context.Context, userID string, opts RecentOptions) ([]types.RecentSearch, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.RecentDefaultLimit
	}
	if limit > s.cfg.RecentMaxLimit {
		return nil, fmt.Errorf("%w: limit %d exceeds maximum of %d", search.ErrInvalidQuery, limit, s.cfg.RecentMaxLimit)
	}

	query := `SELECT query, normalized_query, result_type, result_title, selected,
			MAX(created_at) AS last_searched_at
		FROM search_history
		WHERE user_id = ?`
	args := []any{userID}

	if opts.WorkspaceID != "" {
		query += ` AND workspace_id = ?`
		args = append(args, opts.WorkspaceID)
	}
	if opts.SelectedOnly {
		query += ` AND selected = 1`
	}
	query += ` GROUP BY normalized_query ORDER BY last_searched_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent searches: %w", err)
	}
	defer rows.Close()

	var recents []types.RecentSearch
	for rows.Next() {
		var (
			r          types.RecentSearch
			resultType sql.NullString
			title      sql.NullString
			lastAt     string
		)
		if err := rows.Scan(&r.Query, &r.NormalizedQuery, &resultType, &title, &r.Selected, &lastAt); err != nil {
			return nil, fmt.Errorf("scanning recent search: %w", err)
		}
		if resultType.Valid {
			r.ResultType = types.ResultType(resultType.String)
		}
		if title.Valid {
			r.ResultTitle = title.String
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, lastAt); parseErr == nil {
			r.LastSearchedAt = t
		}
		recents = append(recents, r)
	}
	return recents, rows.Err()
}

// Clear bulk-deletes the user's history, optionally scoped to one
// workspace, and returns the deleted count.
func (s *Store) Clear(ctx context.Context, userID, workspaceID string) (int64, error) {
	query := `DELETE FROM search_history WHERE user_id = ?`
	args := []any{userID}
	if workspaceID != "" {
		query += ` AND workspace_id = ?`
		args = append(args, workspaceID)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// Signal derives the caller's personalization signal from a bounded
// window of recent entries: the set of previously selected titles
// (lowercased) and a per-type selection frequency normalized by the
// largest count, so the most-preferred type scores 1.0. A user with no
// history yields the zero signal; this never errors into the search path.
func (s *Store) Signal(ctx context.Context, userID, workspaceID string) (types.PersonalizationSignal, error) {
	query := `SELECT result_type, result_title, selected
		FROM search_history
		WHERE user_id = ?`
	args := []any{userID}
	if workspaceID != "" {
		query += ` AND workspace_id = ?`
		args = append(args, workspaceID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, s.cfg.Window)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.PersonalizationSignal{}, fmt.Errorf("querying history window: %w", err)
	}
	defer rows.Close()

	selectedTitles := make(map[string]struct{})
	counts := make(map[types.ResultType]int)

	for rows.Next() {
		var (
			resultType sql.NullString
			title      sql.NullString
			selected   bool
		)
		if err := rows.Scan(&resultType, &title, &selected); err != nil {
			return types.PersonalizationSignal{}, fmt.Errorf("scanning history entry: %w", err)
		}
		if !selected {
			continue
		}
		if title.Valid && title.String != "" {
			selectedTitles[search.Normalize(title.String)] = struct{}{}
		}
		if resultType.Valid {
			if t, parseErr := types.ParseResultType(resultType.String); parseErr == nil {
				if t == types.ResultTypeAction {
					t = types.ResultTypeNavigation
				}
				counts[t]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return types.PersonalizationSignal{}, err
	}

	sig := types.PersonalizationSignal{SelectedTitles: selectedTitles}
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount > 0 {
		sig.TypePreference = make(map[types.ResultType]float64, len(counts))
		for t, c := range counts {
			sig.TypePreference[t] = float64(c) / float64(maxCount)
		}
	}
	return sig, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
