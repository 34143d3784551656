// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scholaros/search-service/pkg/types"
)

// seedWorkspaceID is the demo workspace the fixtures belong to.
const seedWorkspaceID = "11111111-1111-1111-1111-111111111111"

// Seed loads a small demo workspace so live search can be exercised end
// to end on a fresh database. Existing rows with the same ids are
// replaced.
func Seed(ctx context.Context, db *sql.DB) (int, error) {
	now := time.Now().UTC()
	day := 24 * time.Hour

	fixtures := map[string][]types.Candidate{
		"tasks": {
			{ID: "t-001", Title: "NSF report", Description: "Quarterly progress report for the NSF award", Status: "in_progress", Priority: "high", UpdatedAt: now.Add(-2 * day)},
			{ID: "t-002", Title: "Submit IRB amendment", Description: "Protocol change for the field study", Status: "open", Priority: "medium", UpdatedAt: now.Add(-10 * day)},
			{ID: "t-003", Title: "Review lab manuscript draft", Description: "Second pass on methods section", Status: "open", Priority: "low", UpdatedAt: now.Add(-1 * day)},
			{ID: "t-004", Title: "Order sequencing reagents", Description: "Restock for the genomics core", Status: "open", Priority: "medium", UpdatedAt: now.Add(-30 * day)},
		},
		"projects": {
			{ID: "p-001", Title: "NSF Report Draft", Description: "Working documents for the annual NSF report", Status: "active", UpdatedAt: now.Add(-5 * day)},
			{ID: "p-002", Title: "Coral microbiome study", Description: "Longitudinal sampling project", Status: "active", UpdatedAt: now.Add(-3 * day)},
			{ID: "p-003", Title: "Grad seminar planning", Description: "Spring seminar series", Status: "paused", UpdatedAt: now.Add(-60 * day)},
		},
		"grants": {
			{ID: "g-001", Title: "NSF CAREER award", Description: "CAREER: coastal ecosystem dynamics", Status: "funded", Category: "federal", UpdatedAt: now.Add(-14 * day)},
			{ID: "g-002", Title: "NIH R01 renewal", Description: "Renewal application, cycle 2026", Status: "in_preparation", Category: "federal", UpdatedAt: now.Add(-4 * day)},
			{ID: "g-003", Title: "Sloan fellowship", Description: "Early-career fellowship nomination", Status: "submitted", Category: "foundation", UpdatedAt: now.Add(-90 * day)},
		},
		"publications": {
			{ID: "pub-001", Title: "Reef microbial succession after bleaching", Description: "In revision at ISME J", Status: "in_revision", UpdatedAt: now.Add(-7 * day)},
			{ID: "pub-002", Title: "Methods for long-read amplicon profiling", Description: "Published, Nature Methods", Status: "published", UpdatedAt: now.Add(-200 * day)},
		},
	}

	total := 0
	for table, rows := range fixtures {
		stmt := fmt.Sprintf(
			`INSERT OR REPLACE INTO %s
				(id, workspace_id, title, description, status, category, priority, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table)
		for _, c := range rows {
			_, err := db.ExecContext(ctx, stmt,
				c.ID, seedWorkspaceID, c.Title, c.Description,
				c.Status, c.Category, c.Priority,
				c.UpdatedAt.UTC().Format(updatedAtLayout))
			if err != nil {
				return total, fmt.Errorf("seeding %s: %w", table, err)
			}
			total++
		}
	}
	return total, nil
}
