package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestReadyBeforeAnyCycle(t *testing.T) {
	checker := NewChecker(fakePinger{}, 30*time.Second)

	ready, reasons := checker.Ready(context.Background())
	if ready {
		t.Fatalf("expected not ready before any cycle has completed")
	}
	if len(reasons) == 0 {
		t.Fatal("expected at least one reason")
	}
}

func TestReadyAfterSuccessfulCycle(t *testing.T) {
	checker := NewChecker(fakePinger{}, 30*time.Second)
	checker.ObserveCycle(time.Now(), nil)

	ready, reasons := checker.Ready(context.Background())
	if !ready {
		t.Fatalf("expected ready, got reasons: %v", reasons)
	}
}

func TestNotReadyWhenDatastoreUnreachable(t *testing.T) {
	checker := NewChecker(fakePinger{err: errors.New("connection refused")}, 30*time.Second)
	checker.ObserveCycle(time.Now(), nil)

	ready, reasons := checker.Ready(context.Background())
	if ready {
		t.Fatalf("expected not ready when datastore ping fails")
	}
	if len(reasons) == 0 {
		t.Fatal("expected a reason describing the datastore failure")
	}
}

func TestNotReadyWhenLastCycleFailed(t *testing.T) {
	checker := NewChecker(fakePinger{}, 30*time.Second)
	checker.ObserveCycle(time.Now(), errors.New("worker pool panic"))

	ready, _ := checker.Ready(context.Background())
	if ready {
		t.Fatal("expected not ready when the last cycle reported an error")
	}
}

func TestNotReadyWhenCycleIsStale(t *testing.T) {
	checker := NewChecker(fakePinger{}, 1*time.Millisecond)
	checker.ObserveCycle(time.Now().Add(-time.Hour), nil)

	ready, reasons := checker.Ready(context.Background())
	if ready {
		t.Fatalf("expected not ready for a stale cycle, reasons: %v", reasons)
	}
}
