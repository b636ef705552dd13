package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/gnmradar/collector/pkg/types"
)

// HTTP issues a GET to params.url. Connect/DNS/timeout errors and 5xx
// responses are hard failures; 4xx is degraded; latency classification
// applies to everything else.
func HTTP(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult {
	url := svc.Params.HTTP.URL
	if url == "" {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "params.url is required"}}
	}

	timeout := time.Duration(cfg.Timeouts.HTTPTimeoutSec) * time.Second
	client := &http.Client{Timeout: timeout}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": err.Error()}}
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: map[string]any{"error": err.Error()}}
	}
	defer resp.Body.Close()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	meta := map[string]any{"http_status": resp.StatusCode, "final_url": finalURL}

	if resp.StatusCode >= 500 {
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
	}
	if resp.StatusCode >= 400 {
		return types.CheckResult{Degraded: true, LatencyMS: latency, Meta: meta}
	}

	return classifyLatency(latency, cfg.Thresholds.HTTPWarnMS, cfg.Thresholds.HTTPVerySlowMS, meta)
}
