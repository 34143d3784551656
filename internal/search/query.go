// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength is the upper bound on normalized query length in
// characters. Longer queries are rejected before any fetch work.
const MaxQueryLength = 200

// ErrInvalidQuery marks client validation failures: empty or over-length
// queries, out-of-range limits, unknown result types. Never retried.
var ErrInvalidQuery = errors.New("invalid query")

// Query is a validated, canonicalized search query.
type Query struct {
	// Raw is the text as the user typed it.
	Raw string

	// Normalized is the trimmed, lowercased form. Live search and history
	// normalization share it so "Test", "test", and "TEST " collapse to
	// one key.
	Normalized string

	// Tokens is Normalized split on whitespace, empty tokens removed.
	Tokens []string
}

// ParseQuery normalizes and validates raw query text. Deterministic and
// side-effect-free; normalizing an already-normalized string is a no-op.
func ParseQuery(raw string) (Query, error) {
	normalized := Normalize(raw)
	if normalized == "" {
		return Query{}, fmt.Errorf("%w: empty after trimming", ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(normalized); n > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: %d characters exceeds maximum of %d", ErrInvalidQuery, n, MaxQueryLength)
	}
	return Query{
		Raw:        raw,
		Normalized: normalized,
		Tokens:     strings.Fields(normalized),
	}, nil
}

// Normalize returns the canonical form of query or title text: trimmed
// and lowercased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
