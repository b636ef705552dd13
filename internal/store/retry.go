package store

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gnmradar/collector/pkg/types"
)

const maxInsertRetries = 5

// inserter is the subset of *Writer the Retrier needs, kept as an
// interface so tests can exercise the retry/backoff logic without a real
// database.
type inserter interface {
	Insert(ctx context.Context, m types.Measurement) error
}

// Retrier wraps an inserter with exponential-backoff retry, dropping and
// reporting the measurement to the supplied onDrop callback after
// exhausting attempts rather than buffering it for later replay.
type Retrier struct {
	writer inserter
	onDrop func(m types.Measurement, err error)
}

// NewRetrier builds a Retrier around writer. onDrop is invoked (from the
// calling goroutine) whenever retries are exhausted; the caller is
// expected to log it at ERROR.
func NewRetrier(writer inserter, onDrop func(types.Measurement, error)) *Retrier {
	return &Retrier{writer: writer, onDrop: onDrop}
}

// Insert attempts the write once and then retries it up to
// maxInsertRetries more times with exponential backoff and jitter, retrying only errors retryable reports as
// transient. A non-retryable error is reported immediately without
// burning the retry budget.
func (r *Retrier) Insert(ctx context.Context, m types.Measurement) {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxInsertRetries), ctx)

	operation := func() error {
		err := r.writer.Insert(ctx, m)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, bo); err != nil {
		if r.onDrop != nil {
			r.onDrop(m, err)
		}
	}
}

// retryable classifies a write error as transient (connection refused,
// timeout, a pgconn.PgError in SQLSTATE class 08 "Connection Exception")
// versus permanent (constraint violation, bad data).
func retryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}
