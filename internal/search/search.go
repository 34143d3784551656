// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search implements the global search ranking engine: it fans a
// normalized query out to per-type candidate sources, extracts a feature
// vector per candidate, scores with a weighted linear model personalized
// by the caller's search history, then deduplicates, ranks, and groups
// the results.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/scholaros/search-service/pkg/types"
)

// Scope carries the already-authorized caller identity. Membership checks
// happen upstream; sources only use it to filter rows.
type Scope struct {
	UserID      string
	WorkspaceID string
}

// Source retrieves candidates of a single result type. Implementations
// apply their own workspace scoping and candidate cap; result ordering is
// irrelevant because the engine re-ranks everything.
type Source interface {
	// Type is the result category this source serves.
	Type() types.ResultType

	// Fetch returns at most the source's cap of candidates matching the
	// query within the scope.
	Fetch(ctx context.Context, query Query, scope Scope) ([]types.Candidate, error)
}

// SignalReader builds the caller's personalization signal from recent
// search history.
type SignalReader interface {
	Signal(ctx context.Context, userID, workspaceID string) (types.PersonalizationSignal, error)
}

// Request holds one search call's parameters.
type Request struct {
	// Query is the raw query text, 1-200 characters after trimming.
	Query string

	// Types restricts the searched result categories. Empty means all.
	Types []types.ResultType

	// WorkspaceID optionally scopes the search to one workspace.
	WorkspaceID string

	// Context is the page the search originated from, used for
	// contextual boosting ("/today", "/grants", ...).
	Context string

	// Limit is the maximum result count. Zero means the configured
	// default.
	Limit int
}

// Output is the ranked response for one search call.
type Output struct {
	// Results is the ranked, truncated result list.
	Results []types.ScoredResult

	// Grouped partitions the full ranked set (pre-truncation) into
	// display buckets, so section headers can show totals per type.
	Grouped map[string][]types.ScoredResult

	// Total counts results before truncation.
	Total int

	// Query echoes the normalized query.
	Query string

	// Limit echoes the effective result limit.
	Limit int

	// DupsRemoved counts candidates dropped by (type, id) deduplication.
	DupsRemoved int

	// SourceErrors records sources that failed or timed out. The search
	// still succeeds with the remaining sources' candidates.
	SourceErrors []string
}

// Engine coordinates one search pipeline pass. Safe for concurrent use:
// the weights and source table are read-only after construction, and
// every pipeline stage produces new values rather than mutating inputs.
type Engine struct {
	sources []Source
	signals SignalReader
	weights types.RankingWeights
	cfg     types.SearchConfig
	logger  *slog.Logger

	// now is the clock used for temporal features. Tests substitute it.
	now func() time.Time
}

// NewEngine assembles the search pipeline. A nil logger falls back to
// slog.Default.
func NewEngine(sources []Source, signals SignalReader, weights types.RankingWeights, cfg types.SearchConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	def := types.DefaultServiceConfig().Search
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.ResultCap <= 0 {
		cfg.ResultCap = def.ResultCap
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = def.SourceTimeout
	}
	return &Engine{
		sources: sources,
		signals: signals,
		weights: weights,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Search runs the full pipeline: validate, fan out to enabled sources and
// the signal builder concurrently, then a single synchronous pass of
// feature extraction, scoring, dedup, ranking, and grouping. Source
// failures degrade the result set instead of failing the request; only
// invalid input and context cancellation return errors.
func (e *Engine) Search(ctx context.Context, req Request, scope Scope) (Output, error) {
	q, err := ParseQuery(req.Query)
	if err != nil {
		return Output{}, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit < 1 || limit > e.cfg.MaxLimit {
		return Output{}, fmt.Errorf("%w: limit %d outside [1, %d]", ErrInvalidQuery, limit, e.cfg.MaxLimit)
	}
	if limit > e.cfg.ResultCap {
		limit = e.cfg.ResultCap
	}

	requested := make(map[types.ResultType]struct{}, len(req.Types))
	for _, t := range req.Types {
		if !t.Valid() {
			return Output{}, fmt.Errorf("%w: unknown result type %q", ErrInvalidQuery, t)
		}
		requested[t] = struct{}{}
	}

	candidates, sig, sourceErrors := e.fanOut(ctx, q, scope, requested)
	if ctx.Err() != nil {
		// Caller is gone; partial results are discarded.
		return Output{}, ctx.Err()
	}

	deduped, removed := dedupCandidates(candidates)

	now := e.now()
	ranked := make([]types.ScoredResult, 0, len(deduped))
	for _, cand := range deduped {
		features := extractFeatures(q, cand, sig, req.Context, now)
		ranked = append(ranked, types.ScoredResult{
			Candidate: cand,
			Features:  features,
			Score:     score(features, e.weights),
		})
	}
	sortResults(ranked)

	out := Output{
		Grouped:      groupResults(ranked),
		Total:        len(ranked),
		Query:        q.Normalized,
		Limit:        limit,
		DupsRemoved:  removed,
		SourceErrors: sourceErrors,
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out.Results = ranked
	return out, nil
}

// fanOut runs the enabled sources and the personalization signal builder
// concurrently, each under the per-source timeout. A source that errors
// or times out contributes zero candidates.
func (e *Engine) fanOut(ctx context.Context, q Query, scope Scope, requested map[types.ResultType]struct{}) ([]types.Candidate, types.PersonalizationSignal, []string) {
	type sourceResult struct {
		candidates []types.Candidate
		err        error
		name       string
	}

	enabled := make([]Source, 0, len(e.sources))
	for _, src := range e.sources {
		if sourceEnabled(src.Type(), requested) {
			enabled = append(enabled, src)
		}
	}

	ch := make(chan sourceResult, len(enabled))
	var wg sync.WaitGroup

	for _, src := range enabled {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout)
			defer cancel()
			candidates, err := src.Fetch(fetchCtx, q, scope)
			ch <- sourceResult{candidates: candidates, err: err, name: string(src.Type())}
		}(src)
	}

	var sig types.PersonalizationSignal
	var sigErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		if e.signals == nil {
			return
		}
		sigCtx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout)
		defer cancel()
		sig, sigErr = e.signals.Signal(sigCtx, scope.UserID, scope.WorkspaceID)
	}()

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Candidate
	var sourceErrors []string
	for sr := range ch {
		if sr.err != nil {
			sourceErrors = append(sourceErrors, fmt.Sprintf("%s: %v", sr.name, sr.err))
			e.logger.Warn("search source degraded", "source", sr.name, "error", sr.err)
			continue
		}
		all = append(all, sr.candidates...)
	}

	// The channel is closed only after the signal goroutine finishes, so
	// sig and sigErr are settled here.
	if sigErr != nil {
		e.logger.Warn("personalization signal unavailable", "user_id", scope.UserID, "error", sigErr)
		sig = types.PersonalizationSignal{}
	}

	return all, sig, sourceErrors
}

// sourceEnabled applies the requested-types filter. An empty filter
// enables everything; a filter naming action also enables the navigation
// source, which serves both categories.
func sourceEnabled(t types.ResultType, requested map[types.ResultType]struct{}) bool {
	if len(requested) == 0 {
		return true
	}
	if _, ok := requested[t]; ok {
		return true
	}
	if t == types.ResultTypeNavigation {
		_, ok := requested[types.ResultTypeAction]
		return ok
	}
	return false
}
