package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gnmradar/collector/pkg/types"
)

// TCP dials host:port and measures connect time; any dial error is a hard
// failure.
func TCP(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult {
	if host == nil {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "tcp requires a host"}}
	}
	if svc.Params.TCP.Port <= 0 {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "params.port is required"}}
	}

	timeout := time.Duration(cfg.Timeouts.TCPTimeoutSec) * time.Second
	dialer := &net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(host.Address, strconv.Itoa(svc.Params.TCP.Port))

	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: map[string]any{"error": err.Error()}}
	}
	defer conn.Close()

	return classifyLatency(latency, cfg.Thresholds.TCPWarnMS, cfg.Thresholds.TCPVerySlowMS, map[string]any{"port": svc.Params.TCP.Port})
}
