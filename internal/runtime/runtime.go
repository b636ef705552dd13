// Package runtime wires a config.Snapshot into a running collector
// process: resolved identity, datastore writer and retrier, worker pool,
// scheduler, readiness checker, and optional metrics exporter. It also
// owns the process-level lifecycle state machine (Starting → Running →
// Draining → Stopped).
package runtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/health"
	"github.com/gnmradar/collector/internal/identity"
	"github.com/gnmradar/collector/internal/logging"
	"github.com/gnmradar/collector/internal/metrics"
	"github.com/gnmradar/collector/internal/probe"
	"github.com/gnmradar/collector/internal/scheduler"
	"github.com/gnmradar/collector/internal/store"
	"github.com/gnmradar/collector/internal/worker"
	"github.com/gnmradar/collector/pkg/types"
)

// Lifecycle states for the process's start/run/drain/stop progression.
const (
	StateStarting = "starting"
	StateRunning  = "running"
	StateDraining = "draining"
	StateStopped  = "stopped"
)

// Writer is the subset of *store.Writer the runtime needs, so tests can
// substitute a fake without a real database.
type Writer interface {
	Insert(ctx context.Context, m types.Measurement) error
	Ping(ctx context.Context) error
	Close()
}

// maxConsecutiveFailedCycles bounds how many consecutive cycles may have
// every attempted write dropped (datastore unreachable) before the
// runtime treats it as fatal and asks Run to return an error, so the
// process can exit non-zero for an orchestrator restart instead of
// looping forever against a datastore that will never recover.
const maxConsecutiveFailedCycles = 5

// Runtime holds every long-lived component a collector process needs
// after configuration has been loaded.
type Runtime struct {
	snapshot  config.Snapshot
	identity  types.ProbeIdentity
	log       *logging.Logger
	metrics   *metrics.Store
	writer    Writer
	retrier   *store.Retrier
	scheduler *scheduler.Scheduler
	health    *health.Checker

	machine *fsm.FSM

	metricsServer *http.Server

	mu                      sync.Mutex
	cycleWriteAttempts      int
	cycleWriteDrops         int
	consecutiveFailedCycles int
	fatalErr                error
	cancelRun               context.CancelFunc
}

// ErrFatalDatastore marks the error Run returns once
// maxConsecutiveFailedCycles consecutive cycles have failed to write any
// measurement (every insert in the cycle exhausted its retries), so the
// CLI can map it to its datastore-error exit status.
var ErrFatalDatastore = fmt.Errorf("datastore unreachable for %d consecutive cycles", maxConsecutiveFailedCycles)

// New loads identity, opens the datastore, and wires the scheduler and
// readiness checker around snap. The returned Runtime starts in the
// "starting" state; call Run to begin collection cycles.
func New(ctx context.Context, snap config.Snapshot, log *logging.Logger) (*Runtime, error) {
	resolver := identity.NewResolver(snap.Main.Region)
	ident := resolver.Resolve(ctx)

	writer, err := store.Open(ctx, snap.Main.DB)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}

	var metricsStore *metrics.Store
	if metrics.Enabled() {
		metricsStore = metrics.NewStore()
	}

	rt := &Runtime{
		snapshot: snap,
		identity: ident,
		log:      log,
		metrics:  metricsStore,
		writer:   writer,
	}

	rt.retrier = store.NewRetrier(writer, func(m types.Measurement, err error) {
		log.Error("dropping measurement after exhausting retries",
			"target_id", m.TargetID, "error", err.Error())
		rt.countWriteDrop()
	})

	rt.health = health.NewChecker(writer, snap.Main.Interval())

	pool := worker.NewPool(snap.Main.Collector.MaxWorkers, probe.Config{
		Timeouts:   snap.Main.Collector.Timeouts,
		Thresholds: snap.Main.Collector.Thresholds,
	})

	rt.scheduler = scheduler.New(snap, ident, pool, schedulerWriter{retrier: rt.retrier, rt: rt},
		scheduler.WithCycleObserver(rt.health),
		scheduler.WithOnMeasurement(rt.observeMeasurement),
		scheduler.WithOnCycleComplete(rt.observeCycleComplete),
	)

	rt.machine = newLifecycle()
	return rt, nil
}

// schedulerWriter adapts *store.Retrier (whose Insert has no return
// value, since it handles its own failures) to scheduler.Writer, and
// tags each attempted write against rt's per-cycle datastore-health
// counters.
type schedulerWriter struct {
	retrier *store.Retrier
	rt      *Runtime
}

func (w schedulerWriter) Insert(ctx context.Context, m types.Measurement) {
	w.rt.countWriteAttempt()
	w.retrier.Insert(ctx, m)
}

func (rt *Runtime) countWriteAttempt() {
	rt.mu.Lock()
	rt.cycleWriteAttempts++
	rt.mu.Unlock()
}

func (rt *Runtime) countWriteDrop() {
	rt.mu.Lock()
	rt.cycleWriteDrops++
	rt.mu.Unlock()
}

func (rt *Runtime) observeMeasurement(m types.Measurement, result types.CheckResult, status int) {
	rt.metrics.ObserveCheck(string(m.Type), status, m.LatencyMS)

	switch status {
	case types.StatusCrit:
		rt.log.Error("check reported CRIT", "target_id", m.TargetID, "type", string(m.Type), "latency_ms", m.LatencyMS)
	case types.StatusWarn:
		rt.log.Warn("check reported WARN", "target_id", m.TargetID, "type", string(m.Type), "latency_ms", m.LatencyMS)
	default:
		rt.log.Debug("check reported OK", "target_id", m.TargetID, "type", string(m.Type), "latency_ms", m.LatencyMS)
	}
}

// observeCycleComplete records the cycle's duration and, if every write
// attempted during the cycle was dropped (datastore unreachable), tracks
// it toward maxConsecutiveFailedCycles. Once that bound is crossed it
// sets fatalErr and cancels the run loop so Run returns a non-nil error
// the CLI maps to its datastore-error exit status.
func (rt *Runtime) observeCycleComplete(d time.Duration, _ error) {
	rt.metrics.ObserveCycle(d)

	rt.mu.Lock()
	attempts, drops := rt.cycleWriteAttempts, rt.cycleWriteDrops
	rt.cycleWriteAttempts, rt.cycleWriteDrops = 0, 0

	fullyFailed := attempts > 0 && drops == attempts
	if fullyFailed {
		rt.consecutiveFailedCycles++
	} else {
		rt.consecutiveFailedCycles = 0
	}
	failedCount := rt.consecutiveFailedCycles
	fatal := failedCount >= maxConsecutiveFailedCycles && rt.fatalErr == nil
	if fatal {
		rt.fatalErr = fmt.Errorf("%w (%d consecutive)", ErrFatalDatastore, failedCount)
	}
	cancel := rt.cancelRun
	rt.mu.Unlock()

	if fatal {
		rt.log.Critical("datastore unreachable for too many consecutive cycles, stopping",
			"consecutive_failed_cycles", failedCount)
		if cancel != nil {
			cancel()
		}
	}
}

// newLifecycle builds the process state machine: starting -> running,
// running <-> draining, draining -> stopped.
func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		StateStarting,
		fsm.Events{
			{Name: "run", Src: []string{StateStarting}, Dst: StateRunning},
			{Name: "drain", Src: []string{StateRunning}, Dst: StateDraining},
			{Name: "resume", Src: []string{StateDraining}, Dst: StateRunning},
			{Name: "stop", Src: []string{StateRunning, StateDraining}, Dst: StateStopped},
		},
		fsm.Callbacks{},
	)
}

// State returns the current lifecycle state.
func (rt *Runtime) State() string {
	return rt.machine.Current()
}

// Identity returns the resolved vantage-point identity.
func (rt *Runtime) Identity() types.ProbeIdentity {
	return rt.identity
}

// Ready reports process readiness for the health endpoint.
func (rt *Runtime) Ready(ctx context.Context) (bool, []string) {
	return rt.health.Ready(ctx)
}

// Run drives the collector's cycle loop until ctx is cancelled, then
// drains and transitions to stopped. It optionally serves the
// Prometheus metrics endpoint for the duration.
func (rt *Runtime) Run(ctx context.Context) error {
	if err := rt.machine.Event(ctx, "run"); err != nil {
		return fmt.Errorf("lifecycle transition to running: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	rt.mu.Lock()
	rt.cancelRun = cancel
	rt.mu.Unlock()
	defer cancel()

	var wg sync.WaitGroup
	if rt.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt.serveMetrics(ctx)
		}()
	}

	rt.scheduler.Run(runCtx)

	if err := rt.machine.Event(context.Background(), "drain"); err != nil {
		rt.log.Warn("lifecycle transition to draining failed", "error", err.Error())
	}
	if rt.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rt.metricsServer.Shutdown(shutdownCtx)
	}
	wg.Wait()

	if err := rt.machine.Event(context.Background(), "stop"); err != nil {
		rt.log.Warn("lifecycle transition to stopped failed", "error", err.Error())
	}

	rt.mu.Lock()
	fatalErr := rt.fatalErr
	rt.mu.Unlock()
	return fatalErr
}

// RunOnce executes exactly one collection cycle and returns, used by the
// CLI's `once` subcommand.
func (rt *Runtime) RunOnce(ctx context.Context) {
	rt.scheduler.RunOnce(ctx)
}

func (rt *Runtime) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())

	rt.metricsServer = &http.Server{
		Addr:    rt.snapshot.Main.Metrics.Addr,
		Handler: mux,
	}
	if err := rt.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		rt.log.Error("metrics server stopped unexpectedly", "error", err.Error())
	}
}

// Close releases the datastore pool and flushes logs. Call after Run
// returns.
func (rt *Runtime) Close() error {
	rt.writer.Close()
	return rt.log.Sync()
}
