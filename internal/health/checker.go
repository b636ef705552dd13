// Package health evaluates the collector's own readiness: whether the
// datastore is reachable and cycles are completing on schedule.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultCycleStaleFactor = 3

// pinger is the subset of *store.Writer this checker needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// Checker evaluates readiness conditions for the collector process.
type Checker struct {
	store        pinger
	cycleTimeout time.Duration

	mu             sync.RWMutex
	lastCycleEnd   time.Time
	lastCycleErr   string
	consecutiveErr int
}

// NewChecker builds a readiness checker. cycleInterval is the configured
// collector.interval_sec; a cycle is considered stale after
// defaultCycleStaleFactor missed intervals.
func NewChecker(store pinger, cycleInterval time.Duration) *Checker {
	return &Checker{store: store, cycleTimeout: cycleInterval * defaultCycleStaleFactor}
}

// ObserveCycle records the outcome of a completed collection cycle.
func (c *Checker) ObserveCycle(ts time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCycleEnd = ts
	if err != nil {
		c.lastCycleErr = err.Error()
		c.consecutiveErr++
		return
	}
	c.lastCycleErr = ""
	c.consecutiveErr = 0
}

// Ready evaluates datastore connectivity and cycle staleness, returning
// overall readiness and the reasons for any failure.
func (c *Checker) Ready(ctx context.Context) (bool, []string) {
	var reasons []string

	if c.store != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := c.store.Ping(pingCtx); err != nil {
			reasons = append(reasons, fmt.Sprintf("datastore unreachable: %v", err))
		}
	}

	c.mu.RLock()
	lastCycleEnd := c.lastCycleEnd
	lastCycleErr := c.lastCycleErr
	c.mu.RUnlock()

	if lastCycleEnd.IsZero() {
		reasons = append(reasons, "no cycle has completed yet")
	} else if c.cycleTimeout > 0 && time.Since(lastCycleEnd) > c.cycleTimeout {
		reasons = append(reasons, fmt.Sprintf("no cycle completed in %s", time.Since(lastCycleEnd).Round(time.Second)))
	}

	if lastCycleErr != "" {
		reasons = append(reasons, fmt.Sprintf("last cycle reported an error: %s", lastCycleErr))
	}

	return len(reasons) == 0, reasons
}
