package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gnmradar/collector/internal/config"
)

// LastMeasurement is one row of the /api/last response.
type LastMeasurement struct {
	TargetID  string          `json:"target_id"`
	HostID    string          `json:"host_id"`
	Type      string          `json:"type"`
	Status    int             `json:"status"`
	LatencyMS int64           `json:"latency_ms"`
	TS        time.Time       `json:"ts"`
	Region    string          `json:"region"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// TimeseriesPoint is one row of the /api/timeseries response.
type TimeseriesPoint struct {
	TS        time.Time `json:"ts"`
	Status    int       `json:"status"`
	LatencyMS int64     `json:"latency_ms"`
}

// Reader serves the read-only query patterns behind the peripheral REST
// API. It shares a *pgxpool.Pool with nothing else — cmd/api opens its
// own pool independent of the collector's Writer, so the read path and
// the write path never contend for the same connection budget.
type Reader struct {
	pool *pgxpool.Pool
}

// OpenReader builds a pool sized identically to Open, since the read API
// and the collector never run in the same process.
func OpenReader(ctx context.Context, db config.DBConfig) (*Reader, error) {
	w, err := Open(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Reader{pool: w.pool}, nil
}

// Close releases pooled connections.
func (r *Reader) Close() {
	r.pool.Close()
}

// Ping checks connectivity, used by the API's /health handler.
func (r *Reader) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.pool.Ping(pingCtx)
}

// FetchLast returns the most recent measurements across all targets,
// newest first, optionally filtered by region.
func (r *Reader) FetchLast(ctx context.Context, region string, limit, offset int) ([]LastMeasurement, error) {
	sql := `
		SELECT target_id, host_id, type, status, latency_ms, ts, region, meta
		FROM measurements
		WHERE ($1 = '' OR region = $1)
		ORDER BY ts DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.pool.Query(ctx, sql, region, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch last: %w", err)
	}
	defer rows.Close()
	return scanLastMeasurements(rows)
}

// FetchLastByTarget returns the single most recent measurement per
// target_id, optionally filtered by region.
func (r *Reader) FetchLastByTarget(ctx context.Context, region string) ([]LastMeasurement, error) {
	sql := `
		SELECT m1.target_id, m1.host_id, m1.type, m1.status, m1.latency_ms, m1.ts, m1.region, m1.meta
		FROM measurements m1
		JOIN (
			SELECT target_id, MAX(ts) AS max_ts
			FROM measurements
			WHERE ($1 = '' OR region = $1)
			GROUP BY target_id
		) sub ON m1.target_id = sub.target_id AND m1.ts = sub.max_ts
		ORDER BY m1.target_id ASC;
	`
	rows, err := r.pool.Query(ctx, sql, region)
	if err != nil {
		return nil, fmt.Errorf("fetch last by target: %w", err)
	}
	defer rows.Close()
	return scanLastMeasurements(rows)
}

// FetchTimeseries returns every measurement for targetID within the
// trailing window ending now, ascending by timestamp.
func (r *Reader) FetchTimeseries(ctx context.Context, targetID, region string, window time.Duration) ([]TimeseriesPoint, error) {
	end := time.Now().UTC()
	start := end.Add(-window)

	sql := `
		SELECT ts, status, latency_ms
		FROM measurements
		WHERE target_id = $1
		  AND ts BETWEEN $2 AND $3
		  AND ($4 = '' OR region = $4)
		ORDER BY ts ASC;
	`
	rows, err := r.pool.Query(ctx, sql, targetID, start, end, region)
	if err != nil {
		return nil, fmt.Errorf("fetch timeseries: %w", err)
	}
	defer rows.Close()

	var points []TimeseriesPoint
	for rows.Next() {
		var p TimeseriesPoint
		if err := rows.Scan(&p.TS, &p.Status, &p.LatencyMS); err != nil {
			return nil, fmt.Errorf("scan timeseries row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanLastMeasurements(rows pgx.Rows) ([]LastMeasurement, error) {
	var out []LastMeasurement
	for rows.Next() {
		var (
			m    LastMeasurement
			meta []byte
		)
		if err := rows.Scan(&m.TargetID, &m.HostID, &m.Type, &m.Status, &m.LatencyMS, &m.TS, &m.Region, &meta); err != nil {
			return nil, fmt.Errorf("scan measurement row: %w", err)
		}
		if len(meta) > 0 {
			m.Meta = json.RawMessage(meta)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
