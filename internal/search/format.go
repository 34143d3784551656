// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes ranked results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-7s  %-12s  %-50s  %-14s  %s\n",
		"Rank", "Score", "Type", "Title", "Status", "Updated")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for i, r := range out.Results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d  %-7.3f  %-12s  %-50s  %-14s  %s\n",
			i+1, r.Score, r.Type, title, r.Status, updated)
	}

	fmt.Fprintf(w, "\n%d of %d results", len(out.Results), out.Total)
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)

	for _, bucket := range []string{"tasks", "projects", "grants", "publications", "navigation"} {
		if n := len(out.Grouped[bucket]); n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", bucket, n)
		}
	}

	if len(out.SourceErrors) > 0 {
		for _, e := range out.SourceErrors {
			fmt.Fprintf(w, "warning: source degraded: %s\n", e)
		}
	}
}

// FormatJSON writes the full output, including per-result feature
// vectors, as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Results any `json:"results"`
		Grouped any `json:"grouped"`
		Total   int `json:"total"`
		Query   string `json:"query"`
		Limit   int `json:"limit"`
	}{out.Results, out.Grouped, out.Total, out.Query, out.Limit})
}
