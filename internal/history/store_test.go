package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/scholaros/search-service/internal/search"
	"github.com/scholaros/search-service/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// Each pooled connection would otherwise see its own empty in-memory
	// database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, types.HistoryConfig{})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func record(t *testing.T, s *Store, entry types.SearchHistoryEntry) {
	t.Helper()
	if err := s.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func selection(userID, query string, resultType types.ResultType, title string, at time.Time) types.SearchHistoryEntry {
	return types.SearchHistoryEntry{
		UserID:      userID,
		Query:       query,
		ResultType:  resultType,
		ResultID:    "r-1",
		ResultTitle: title,
		Selected:    true,
		CreatedAt:   at,
	}
}

// --- recording ---

func TestRecordDefaults(t *testing.T) {
	s := testStore(t)
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "NSF Report"})

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 1 {
		t.Fatalf("len(recents) = %d, want 1", len(recents))
	}
	r := recents[0]
	if r.Query != "NSF Report" {
		t.Errorf("Query = %q, raw text should be preserved", r.Query)
	}
	if r.NormalizedQuery != "nsf report" {
		t.Errorf("NormalizedQuery = %q, want %q", r.NormalizedQuery, "nsf report")
	}
	if r.Selected {
		t.Error("Selected should default to false")
	}
	if r.LastSearchedAt.IsZero() {
		t.Error("LastSearchedAt should be set from the insert time")
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	s := testStore(t)
	tests := []struct {
		name  string
		entry types.SearchHistoryEntry
	}{
		{"empty query", types.SearchHistoryEntry{UserID: "u1", Query: "   "}},
		{"unknown result type", types.SearchHistoryEntry{UserID: "u1", Query: "ok", ResultType: "document"}},
		{"unknown source", types.SearchHistoryEntry{UserID: "u1", Query: "ok", Source: "cli"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Record(context.Background(), tt.entry); !errors.Is(err, search.ErrInvalidQuery) {
				t.Errorf("err = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

// --- recent searches ---

func TestRecentDedupesByNormalizedQuery(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	for i, raw := range []string{"Test", "test", "TEST  "} {
		record(t, s, types.SearchHistoryEntry{
			UserID:    "u1",
			Query:     raw,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "other", CreatedAt: base.Add(time.Hour)})

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 2 {
		t.Fatalf("len(recents) = %d, want 2 (case variants collapse)", len(recents))
	}
	// Newest first.
	if recents[0].NormalizedQuery != "other" {
		t.Errorf("recents[0] = %q, want %q", recents[0].NormalizedQuery, "other")
	}
	// The collapsed row carries the latest timestamp.
	if !recents[1].LastSearchedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("LastSearchedAt = %v, want the most recent of the three", recents[1].LastSearchedAt)
	}
}

func TestRecentKeepsNewestSubsecondTimestamp(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	// Same second, fractional parts of different digit lengths. A
	// trailing-zero-trimmed encoding would sort 123ms after 123.4ms
	// lexicographically even though it is older.
	older := base.Add(123 * time.Millisecond)
	newer := base.Add(123400 * time.Microsecond)
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "test", CreatedAt: older})
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "TEST", CreatedAt: newer})

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 1 {
		t.Fatalf("len(recents) = %d, want 1", len(recents))
	}
	if !recents[0].LastSearchedAt.Equal(newer) {
		t.Errorf("LastSearchedAt = %v, want the newer %v", recents[0].LastSearchedAt, newer)
	}

	// Ordering across distinct queries obeys the same sub-second rule.
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "other", CreatedAt: base.Add(123450 * time.Microsecond)})
	recents, err = s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 2 || recents[0].NormalizedQuery != "other" {
		t.Errorf("recents = %+v, want %q first", recents, "other")
	}
}

func TestRecentScoping(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	record(t, s, types.SearchHistoryEntry{UserID: "u1", WorkspaceID: "w1", Query: "alpha", CreatedAt: at})
	record(t, s, types.SearchHistoryEntry{UserID: "u1", WorkspaceID: "w2", Query: "beta", CreatedAt: at})
	record(t, s, types.SearchHistoryEntry{UserID: "u2", Query: "gamma", CreatedAt: at})

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{WorkspaceID: "w1"})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 1 || recents[0].NormalizedQuery != "alpha" {
		t.Errorf("workspace scoping failed: %+v", recents)
	}
}

func TestRecentSelectedOnly(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "browsed", CreatedAt: at})
	record(t, s, selection("u1", "picked", types.ResultTypeTask, "NSF report", at))

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{SelectedOnly: true})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 1 {
		t.Fatalf("len(recents) = %d, want 1", len(recents))
	}
	if recents[0].NormalizedQuery != "picked" || recents[0].ResultType != types.ResultTypeTask {
		t.Errorf("unexpected row: %+v", recents[0])
	}
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		record(t, s, types.SearchHistoryEntry{
			UserID:    "u1",
			Query:     fmt.Sprintf("query %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	// Default limit.
	recents, err := s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 10 {
		t.Errorf("default limit: len(recents) = %d, want 10", len(recents))
	}

	// Explicit limit.
	recents, err = s.Recent(context.Background(), "u1", RecentOptions{Limit: 3})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 3 {
		t.Errorf("explicit limit: len(recents) = %d, want 3", len(recents))
	}

	// Over the maximum.
	if _, err := s.Recent(context.Background(), "u1", RecentOptions{Limit: 51}); !errors.Is(err, search.ErrInvalidQuery) {
		t.Errorf("over-max limit: err = %v, want ErrInvalidQuery", err)
	}
}

// --- clearing ---

func TestClear(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	record(t, s, types.SearchHistoryEntry{UserID: "u1", WorkspaceID: "w1", Query: "a", CreatedAt: at})
	record(t, s, types.SearchHistoryEntry{UserID: "u1", WorkspaceID: "w2", Query: "b", CreatedAt: at})
	record(t, s, types.SearchHistoryEntry{UserID: "u2", Query: "c", CreatedAt: at})

	deleted, err := s.Clear(context.Background(), "u1", "w1")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	deleted, err = s.Clear(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1 remaining u1 entry", deleted)
	}

	// Other users untouched.
	recents, err := s.Recent(context.Background(), "u2", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 1 {
		t.Errorf("u2 history should survive, got %d entries", len(recents))
	}
}

// --- personalization signal ---

func TestSignalEmptyHistory(t *testing.T) {
	s := testStore(t)
	sig, err := s.Signal(context.Background(), "nobody", "")
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if len(sig.SelectedTitles) != 0 {
		t.Errorf("SelectedTitles = %v, want empty", sig.SelectedTitles)
	}
	if sig.PreferenceFor(types.ResultTypeTask) != 0 {
		t.Error("a user with no history should have zero type preference")
	}
}

func TestSignalTypePreference(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	// Four task selections, two project, one navigation.
	for i := 0; i < 4; i++ {
		record(t, s, selection("u1", fmt.Sprintf("t%d", i), types.ResultTypeTask, fmt.Sprintf("Task %d", i), at))
	}
	for i := 0; i < 2; i++ {
		record(t, s, selection("u1", fmt.Sprintf("p%d", i), types.ResultTypeProject, fmt.Sprintf("Project %d", i), at))
	}
	record(t, s, selection("u1", "n0", types.ResultTypeNavigation, "Grants", at))
	// Unselected searches contribute nothing.
	record(t, s, types.SearchHistoryEntry{UserID: "u1", Query: "ignored", CreatedAt: at})

	sig, err := s.Signal(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if got := sig.PreferenceFor(types.ResultTypeTask); got != 1.0 {
		t.Errorf("task preference = %v, want 1.0 (most selected)", got)
	}
	if got := sig.PreferenceFor(types.ResultTypeProject); got != 0.5 {
		t.Errorf("project preference = %v, want 0.5", got)
	}
	if got := sig.PreferenceFor(types.ResultTypeNavigation); got != 0.25 {
		t.Errorf("navigation preference = %v, want 0.25", got)
	}
	if got := sig.PreferenceFor(types.ResultTypeGrant); got != 0 {
		t.Errorf("grant preference = %v, want 0 (never selected)", got)
	}
}

func TestSignalFoldsActionIntoNavigation(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	record(t, s, selection("u1", "new", types.ResultTypeAction, "Create task", at))
	record(t, s, selection("u1", "grants", types.ResultTypeNavigation, "Grants", at))

	sig, err := s.Signal(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if got := sig.PreferenceFor(types.ResultTypeNavigation); got != 1.0 {
		t.Errorf("navigation preference = %v, want 1.0 (action folds in)", got)
	}
	if got := sig.PreferenceFor(types.ResultTypeAction); got != 1.0 {
		t.Errorf("action preference = %v, should read the navigation bucket", got)
	}
}

func TestSignalSelectedTitlesNormalized(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	record(t, s, selection("u1", "nsf", types.ResultTypeTask, "NSF Report", at))

	sig, err := s.Signal(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if !sig.PreviouslySelected("nsf report") {
		t.Error("selected title should be stored in normalized form")
	}
	if sig.PreviouslySelected("nsf report draft") {
		t.Error("unrelated title should not match")
	}
}

// --- async recorder ---

func TestRecorderWritesAsync(t *testing.T) {
	s := testStore(t)
	rec, err := NewRecorder(s, 2, nil)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	rec.Record(types.SearchHistoryEntry{UserID: "u1", Query: "async write"})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 1 || recents[0].NormalizedQuery != "async write" {
		t.Errorf("entry should be durable after Close, got %+v", recents)
	}
}

func TestRecorderSwallowsBadEntries(t *testing.T) {
	s := testStore(t)
	rec, err := NewRecorder(s, 1, nil)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	// Invalid entry is dropped with a warning, never a panic or error.
	rec.Record(types.SearchHistoryEntry{UserID: "u1", Query: "   "})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	recents, err := s.Recent(context.Background(), "u1", RecentOptions{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recents) != 0 {
		t.Errorf("invalid entry should not be persisted, got %+v", recents)
	}
}
