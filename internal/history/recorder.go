// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/scholaros/search-service/pkg/types"
)

const (
	writeTimeout = 2 * time.Second
	drainTimeout = 5 * time.Second
)

// Recorder writes history entries asynchronously on a bounded worker
// pool so the search response never blocks on history durability. A full
// pool or a failed write drops the entry with a warning; recording
// failures never propagate to the caller.
type Recorder struct {
	store  *Store
	pool   *ants.Pool
	logger *slog.Logger
}

// NewRecorder builds a recorder over the given store. A nil logger falls
// back to slog.Default.
func NewRecorder(store *Store, workers int, logger *slog.Logger) (*Recorder, error) {
	if workers <= 0 {
		workers = types.DefaultServiceConfig().History.Workers
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Nonblocking: when every worker is busy the submit fails instead of
	// stalling the search request.
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, pool: pool, logger: logger}, nil
}

// Record schedules one entry for persistence and returns immediately.
func (r *Recorder) Record(entry types.SearchHistoryEntry) {
	err := r.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if werr := r.store.Record(ctx, entry); werr != nil {
			r.logger.Warn("history write failed",
				"user_id", entry.UserID, "query", entry.Query, "error", werr)
		}
	})
	if err != nil {
		r.logger.Warn("history write dropped: recorder pool saturated",
			"user_id", entry.UserID, "query", entry.Query, "error", err)
	}
}

// Close drains in-flight writes and releases the pool. Called once at
// shutdown by the owning server.
func (r *Recorder) Close() error {
	return r.pool.ReleaseTimeout(drainTimeout)
}
