package history

import (
	"context"
	"time"
)

// sweepInterval is how often the retention sweeper wakes up.
const sweepInterval = 6 * time.Hour

// StartRetention prunes predictions older than maxAge on a ticker until
// ctx is canceled. Run in its own goroutine from main.
func (s *Store) StartRetention(ctx context.Context, maxAge time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	// One sweep at startup so a long-stopped deployment catches up.
	s.prune(ctx, maxAge)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune(ctx, maxAge)
		}
	}
}

func (s *Store) prune(ctx context.Context, maxAge time.Duration) {
	cutoff := time.Now().UTC().Add(-maxAge)
	tag, err := s.pool.Exec(ctx, "prune_predictions", cutoff)
	if err != nil {
		s.logger.Error("Retention sweep failed", "error", err)
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		s.logger.Info("Retention sweep pruned predictions", "rows", n, "cutoff", cutoff)
	}
}
