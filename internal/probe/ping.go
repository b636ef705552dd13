package probe

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/gnmradar/collector/pkg/types"
)

// Ping sends a single ICMP echo via an unprivileged pro-bing socket; on a
// permission error it falls back to exec'ing the OS ping binary, mirroring
// original_source/collector/collector.py's subprocess.run fallback.
func Ping(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult {
	if host == nil {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "ping requires a host"}}
	}
	timeout := time.Duration(cfg.Timeouts.PingTimeoutSec) * time.Second

	result, err := pingUnprivileged(ctx, host.Address, timeout)
	if err != nil && isPermissionError(err) {
		result, err = pingExternalBinary(ctx, host.Address, cfg.Timeouts.PingTimeoutSec)
	}
	if err != nil {
		return types.CheckResult{
			HardFailure: true,
			LatencyMS:   result.LatencyMS,
			Meta:        map[string]any{"error": err.Error(), "ping_mode": result.Mode},
		}
	}
	return classifyLatency(result.LatencyMS, cfg.Thresholds.PingWarnMS, cfg.Thresholds.PingVerySlowMS,
		map[string]any{"ping_mode": result.Mode})
}

type pingOutcome struct {
	LatencyMS int64
	Mode      string
}

func pingUnprivileged(ctx context.Context, address string, timeout time.Duration) (pingOutcome, error) {
	pinger, err := probing.NewPinger(address)
	if err != nil {
		return pingOutcome{Mode: "unprivileged"}, err
	}
	pinger.SetPrivileged(false)
	pinger.Count = 1
	pinger.Timeout = timeout

	if err := pinger.RunWithContext(ctx); err != nil {
		return pingOutcome{Mode: "unprivileged"}, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return pingOutcome{Mode: "unprivileged"}, errors.New("no reply received")
	}
	return pingOutcome{LatencyMS: stats.AvgRtt.Milliseconds(), Mode: "unprivileged"}, nil
}

func pingExternalBinary(ctx context.Context, address string, timeoutSec int) (pingOutcome, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", strconv.Itoa(timeoutSec), address)
	err := cmd.Run()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return pingOutcome{LatencyMS: latency, Mode: "external_binary"}, err
	}
	return pingOutcome{LatencyMS: latency, Mode: "external_binary"}, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}
