// Package history persists classification outcomes to Postgres for
// offline analysis. The store is optional: without a DATABASE_URL the
// API runs stateless and every call here is skipped. Recording is
// asynchronous so the classify path never blocks on the database.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seglytics/segment-api/internal/config"
	"github.com/seglytics/segment-api/internal/segment"
)

// recordBuffer bounds the async queue; overflow drops the record rather
// than stalling a request.
const recordBuffer = 256

// Record is one stored classification outcome.
type Record struct {
	ID        int64        `json:"id"`
	Recency   float64      `json:"recency"`
	Frequency float64      `json:"frequency"`
	Monetary  float64      `json:"monetary"`
	Segment   segment.Name `json:"segment"`
	Display   string       `json:"display_name"`
	CreatedAt time.Time    `json:"created_at"`
}

// Store wraps a pgxpool with the prediction history statements.
type Store struct {
	pool   *pgxpool.Pool
	queue  chan Record
	logger *slog.Logger
}

// New creates and validates a connection pool for the history store.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{
		pool:   pool,
		queue:  make(chan Record, recordBuffer),
		logger: logger,
	}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	var n int
	return s.pool.QueryRow(ctx, "health_check").Scan(&n)
}

// Enqueue hands a record to the async writer. Never blocks: if the
// buffer is full the record is dropped and counted in the log.
func (s *Store) Enqueue(in segment.Input, res segment.Result) {
	rec := Record{
		Recency:   in.Recency,
		Frequency: in.Frequency,
		Monetary:  in.Monetary,
		Segment:   res.Segment,
		Display:   res.Display,
	}
	select {
	case s.queue <- rec:
	default:
		s.logger.Warn("History queue full, dropping record", "segment", rec.Segment)
	}
}

// StartWorker consumes the record queue until ctx is canceled. Run in
// its own goroutine from main.
func (s *Store) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-s.queue:
			insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := s.insert(insertCtx, rec); err != nil {
				s.logger.Error("Failed to record prediction", "error", err, "segment", rec.Segment)
			}
			cancel()
		}
	}
}

func (s *Store) insert(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, "insert_prediction",
		rec.Recency, rec.Frequency, rec.Monetary, string(rec.Segment), rec.Display)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Recent returns the most recent classifications, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, "recent_predictions", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent predictions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var seg string
		if err := rows.Scan(&r.ID, &r.Recency, &r.Frequency, &r.Monetary, &seg, &r.Display, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		r.Segment = segment.Name(seg)
		out = append(out, r)
	}
	return out, rows.Err()
}

// registerPreparedStatements registers every statement the store uses.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Recording
		"insert_prediction": `
			INSERT INTO predictions (recency, frequency, monetary, segment, display_name)
			VALUES ($1, $2, $3, $4, $5)`,

		// Queries
		"recent_predictions": `
			SELECT id, recency, frequency, monetary, segment, display_name, created_at
			FROM predictions
			ORDER BY created_at DESC
			LIMIT $1`,

		// Retention
		"prune_predictions": "DELETE FROM predictions WHERE created_at < $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
