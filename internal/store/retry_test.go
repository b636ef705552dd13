package store

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gnmradar/collector/pkg/types"
)

type fakeInserter struct {
	failuresBeforeSuccess int
	attempts              int
	err                   error
}

func (f *fakeInserter) Insert(ctx context.Context, m types.Measurement) error {
	f.attempts++
	if f.attempts <= f.failuresBeforeSuccess {
		return f.err
	}
	return nil
}

func TestRetrierSucceedsAfterTransientFailures(t *testing.T) {
	fake := &fakeInserter{failuresBeforeSuccess: 2, err: &net.DNSError{IsTimeout: true}}
	var dropped bool
	r := NewRetrier(fake, func(types.Measurement, error) { dropped = true })

	r.Insert(context.Background(), types.Measurement{TargetID: "t1"})

	if dropped {
		t.Fatal("measurement should not have been dropped")
	}
	if fake.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", fake.attempts)
	}
}

func TestRetrierDropsAfterExhaustingRetries(t *testing.T) {
	fake := &fakeInserter{failuresBeforeSuccess: maxInsertRetries + 10, err: &net.DNSError{IsTimeout: true}}
	var dropped bool
	var dropErr error
	r := NewRetrier(fake, func(m types.Measurement, err error) {
		dropped = true
		dropErr = err
	})

	r.Insert(context.Background(), types.Measurement{TargetID: "t1"})

	if !dropped {
		t.Fatal("measurement should have been dropped after retry exhaustion")
	}
	if dropErr == nil {
		t.Fatal("expected a non-nil drop error")
	}
}

func TestRetrierDoesNotRetryPermanentErrors(t *testing.T) {
	fake := &fakeInserter{failuresBeforeSuccess: 100, err: errors.New("constraint violation")}
	var dropped bool
	r := NewRetrier(fake, func(types.Measurement, error) { dropped = true })

	r.Insert(context.Background(), types.Measurement{TargetID: "t1"})

	if !dropped {
		t.Fatal("expected drop for permanent error")
	}
	if fake.attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable error, got %d", fake.attempts)
	}
}

func TestRetryableClassification(t *testing.T) {
	if !retryable(&net.DNSError{IsTimeout: true}) {
		t.Error("expected net.Error to be retryable")
	}
	if !retryable(context.DeadlineExceeded) {
		t.Error("expected context.DeadlineExceeded to be retryable")
	}
	if !retryable(&pgconn.PgError{Code: "08006"}) {
		t.Error("expected pgconn connection-exception class to be retryable")
	}
	if retryable(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected unique-violation to not be retryable")
	}
	if retryable(errors.New("plain error")) {
		t.Error("expected a plain error to not be retryable")
	}
}
