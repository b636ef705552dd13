package worker

import (
	"context"
	"testing"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/probe"
	"github.com/gnmradar/collector/pkg/types"
)

func testProbeConfig() probe.Config {
	return probe.Config{
		Timeouts: config.TimeoutsCfg{
			HTTPTimeoutSec: 2, DNSTimeoutSec: 2, TCPTimeoutSec: 2, JSONTimeoutSec: 2, PingTimeoutSec: 2,
		},
		Thresholds: config.ThresholdsCfg{
			HTTPWarnMS: 3000, HTTPVerySlowMS: 8000, CertWarnDays: 14,
		},
	}
}

func TestPoolRunsAllJobs(t *testing.T) {
	jobs := []Job{
		{Service: types.ServiceSpec{ServiceID: "s1", Type: types.CheckTCP, Params: types.ServiceParams{TCP: types.TCPParams{Port: 1}}}, Host: &types.HostSpec{Address: "127.0.0.1"}},
		{Service: types.ServiceSpec{ServiceID: "s2", Type: types.CheckTCP, Params: types.ServiceParams{TCP: types.TCPParams{Port: 1}}}, Host: &types.HostSpec{Address: "127.0.0.1"}},
		{Service: types.ServiceSpec{ServiceID: "s3", Type: types.CheckTCP, Params: types.ServiceParams{TCP: types.TCPParams{Port: 1}}}, Host: &types.HostSpec{Address: "127.0.0.1"}},
	}

	pool := NewPool(2, testProbeConfig())
	results := pool.Run(context.Background(), jobs)

	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}

	seen := make(map[string]bool)
	for _, r := range results {
		seen[r.ServiceID] = true
		if !r.Outcome.HardFailure {
			t.Errorf("expected hard failure connecting to closed port, got %#v", r.Outcome)
		}
	}
	for _, j := range jobs {
		if !seen[j.Service.ServiceID] {
			t.Errorf("missing result for %s", j.Service.ServiceID)
		}
	}
}

func TestPoolEmptyJobsReturnsNil(t *testing.T) {
	pool := NewPool(4, testProbeConfig())
	results := pool.Run(context.Background(), nil)
	if results != nil {
		t.Fatalf("expected nil results for empty job list, got %#v", results)
	}
}

func TestPoolCapsWorkerCountAtZero(t *testing.T) {
	pool := NewPool(0, testProbeConfig())
	if pool.workerCount != 1 {
		t.Fatalf("expected workerCount to floor at 1, got %d", pool.workerCount)
	}
}
