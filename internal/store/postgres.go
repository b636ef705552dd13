// Package store writes completed measurements to the append-only
// Postgres telemetry table.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/pkg/types"
)

const insertMeasurementSQL = `
INSERT INTO measurements (
    ts, region, project_id, target_id, host_id, type, status, latency_ms, meta
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// Writer appends measurements to Postgres via a pooled connection.
type Writer struct {
	pool *pgxpool.Pool
}

// Open builds a pgxpool.Pool from db. pgxpool has no separate idle-cache
// knob, so pool_mincached maps onto MinConns and pool_maxconnections onto
// MaxConns; pool_maxcached has no pgxpool equivalent and is accepted for
// config compatibility only.
func Open(ctx context.Context, db config.DBConfig) (*Writer, error) {
	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Database, db.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MinConns = int32(db.PoolMinCached)
	poolCfg.MaxConns = int32(db.PoolMaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Writer{pool: pool}, nil
}

// Close releases pooled connections.
func (w *Writer) Close() {
	w.pool.Close()
}

// Insert appends one measurement row. Callers needing retry-with-backoff
// semantics should go through Retrier.Insert instead of calling this
// directly.
func (w *Writer) Insert(ctx context.Context, m types.Measurement) error {
	_, err := w.pool.Exec(ctx, insertMeasurementSQL,
		m.TS, m.Region, m.ProjectID, m.TargetID, m.HostID, string(m.Type), m.Status, m.LatencyMS, m.MetaJSON,
	)
	if err != nil {
		return fmt.Errorf("insert measurement: %w", err)
	}
	return nil
}

// Ping checks connectivity, used by the readiness checker.
func (w *Writer) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return w.pool.Ping(pingCtx)
}
