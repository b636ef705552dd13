package probe

import "github.com/gnmradar/collector/pkg/types"

// classifyLatency applies the two-tier warn/very-slow latency thresholds
// shared by the ping, http, tcp, and json_api probes, merging extra
// metadata into the result.
func classifyLatency(latencyMS int64, warnMS, verySlowMS int, extraMeta map[string]any) types.CheckResult {
	meta := extraMeta
	if meta == nil {
		meta = map[string]any{}
	}

	if latencyMS >= int64(verySlowMS) {
		meta["slow"] = "very"
		return types.CheckResult{Degraded: true, LatencyMS: latencyMS, Meta: meta}
	}
	if latencyMS >= int64(warnMS) {
		meta["slow"] = "yes"
		return types.CheckResult{Degraded: true, LatencyMS: latencyMS, Meta: meta}
	}
	return types.CheckResult{LatencyMS: latencyMS, Meta: meta}
}

// classifySingleThreshold is classifyLatency's one-tier counterpart, used
// by the dns probe, which has only a single dns_warn_ms threshold knob.
func classifySingleThreshold(latencyMS int64, warnMS int, extraMeta map[string]any) types.CheckResult {
	meta := extraMeta
	if meta == nil {
		meta = map[string]any{}
	}
	if latencyMS >= int64(warnMS) {
		meta["slow"] = "yes"
		return types.CheckResult{Degraded: true, LatencyMS: latencyMS, Meta: meta}
	}
	return types.CheckResult{LatencyMS: latencyMS, Meta: meta}
}
