// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "github.com/scholaros/search-service/pkg/types"

// Display bucket names keyed by result type. Action results fold into the
// navigation bucket.
var bucketNames = map[types.ResultType]string{
	types.ResultTypeTask:        "tasks",
	types.ResultTypeProject:     "projects",
	types.ResultTypeGrant:       "grants",
	types.ResultTypePublication: "publications",
	types.ResultTypeNavigation:  "navigation",
	types.ResultTypeAction:      "navigation",
}

// groupResults partitions a ranked result set into named display buckets.
// Every bucket is present even when empty, each result lands in exactly
// one bucket, and relative order within a bucket matches the ranked order.
// Grouping is display sectioning only; it never re-scores.
func groupResults(results []types.ScoredResult) map[string][]types.ScoredResult {
	grouped := map[string][]types.ScoredResult{
		"tasks":        {},
		"projects":     {},
		"grants":       {},
		"publications": {},
		"navigation":   {},
	}
	for _, r := range results {
		bucket := bucketNames[r.Type]
		grouped[bucket] = append(grouped[bucket], r)
	}
	return grouped
}
