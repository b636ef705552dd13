// Package scheduler drives the collector's fixed-period cycle: load the
// enabled services, fan them out to the worker pool, classify and write
// each result, then sleep to the next cycle boundary.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gnmradar/collector/internal/classify"
	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/worker"
	"github.com/gnmradar/collector/pkg/types"
)

// Writer is the subset of the datastore writer the scheduler depends on.
type Writer interface {
	Insert(ctx context.Context, m types.Measurement)
}

// CycleObserver is notified after every completed cycle, successful or
// not, so the readiness checker can track staleness.
type CycleObserver interface {
	ObserveCycle(ts time.Time, err error)
}

// Scheduler owns the failure-streak table exclusively and the single
// ticking loop that drives every cycle.
type Scheduler struct {
	snapshot config.Snapshot
	identity types.ProbeIdentity
	pool     *worker.Pool
	writer   Writer
	observer CycleObserver

	streaks *classify.Streaks
	now     func() time.Time

	onCycleDone     func(types.Measurement, types.CheckResult, int)
	onCycleComplete func(duration time.Duration, err error)
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithNow overrides the clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCycleObserver registers a readiness observer.
func WithCycleObserver(obs CycleObserver) Option {
	return func(s *Scheduler) { s.observer = obs }
}

// WithOnMeasurement registers a hook invoked synchronously for every
// classified measurement within a cycle, primarily so metrics/logging can
// observe per-check outcomes without the scheduler importing them
// directly.
func WithOnMeasurement(fn func(types.Measurement, types.CheckResult, int)) Option {
	return func(s *Scheduler) { s.onCycleDone = fn }
}

// WithOnCycleComplete registers a hook invoked once per cycle with its
// wall-clock duration and whether every result in it was a hard failure,
// so metrics/runtime escalation can observe cycle-level health without
// the scheduler importing them directly.
func WithOnCycleComplete(fn func(duration time.Duration, err error)) Option {
	return func(s *Scheduler) { s.onCycleComplete = fn }
}

// New builds a Scheduler bound to a loaded config snapshot, resolved
// identity, worker pool, and datastore writer.
func New(snapshot config.Snapshot, identity types.ProbeIdentity, pool *worker.Pool, writer Writer, opts ...Option) *Scheduler {
	s := &Scheduler{
		snapshot: snapshot,
		identity: identity,
		pool:     pool,
		writer:   writer,
		streaks:  classify.NewStreaks(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes cycles on a fixed-period ticker until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.snapshot.Main.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes exactly one cycle: enumerate enabled services, fan out
// to the worker pool, classify each result, and write each measurement.
// Used directly by the CLI's `once` subcommand as well as by Run's loop.
//
// The cycle runs against a context detached from ctx's cancellation (but
// still bounded, to one interval's worth of grace) so that a SIGTERM
// arriving mid-cycle lets every already-dispatched job finish and be
// written rather than aborting the batch partway through — Run itself
// still stops scheduling further cycles once ctx is done.
func (s *Scheduler) RunOnce(ctx context.Context) {
	cycleID := uuid.NewString()
	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.snapshot.Main.Interval())
	defer cancel()

	start := s.now()
	services := s.snapshot.EnabledServices()

	jobs := make([]worker.Job, 0, len(services))
	for _, svc := range services {
		var host *types.HostSpec
		if svc.HostID != "" {
			if h, ok := s.snapshot.Hosts[svc.HostID]; ok {
				hCopy := h
				host = &hCopy
			}
		}
		jobs = append(jobs, worker.Job{Service: svc, Host: host})
	}

	results := s.pool.Run(cycleCtx, jobs)

	var failures int
	for _, r := range results {
		status := s.streaks.Apply(r.ServiceID, r.Outcome)
		m := s.toMeasurement(r, status, cycleID)
		s.writer.Insert(cycleCtx, m)
		if r.Outcome.HardFailure {
			failures++
		}
		if s.onCycleDone != nil {
			s.onCycleDone(m, r.Outcome, status)
		}
	}

	var cycleErr error
	if len(results) > 0 && failures == len(results) {
		cycleErr = fmt.Errorf("cycle %s: all %d results were hard failures", cycleID, failures)
	}

	if s.observer != nil {
		s.observer.ObserveCycle(s.now(), cycleErr)
	}
	if s.onCycleComplete != nil {
		s.onCycleComplete(s.now().Sub(start), cycleErr)
	}
}

func (s *Scheduler) toMeasurement(r worker.Result, status int, cycleID string) types.Measurement {
	var svc types.ServiceSpec
	for _, candidate := range s.snapshot.Services {
		if candidate.ServiceID == r.ServiceID {
			svc = candidate
			break
		}
	}

	meta := make(map[string]any, len(r.Outcome.Meta)+6)
	for k, v := range r.Outcome.Meta {
		meta[k] = v
	}
	meta["probe_region"] = s.identity.Region
	meta["probe_country"] = s.identity.Country
	meta["probe_city"] = s.identity.City
	meta["probe_public_ip"] = s.identity.PublicIP
	meta["probe_source"] = s.identity.Source
	meta["cycle_id"] = cycleID

	var metaJSON []byte
	if encoded, err := json.Marshal(meta); err == nil {
		metaJSON = encoded
	}

	return types.Measurement{
		TS:        s.now(),
		Region:    s.identity.Region,
		ProjectID: svc.ProjectID,
		TargetID:  r.ServiceID,
		HostID:    svc.HostID,
		Type:      svc.Type,
		Status:    status,
		LatencyMS: r.Outcome.LatencyMS,
		MetaJSON:  metaJSON,
	}
}
