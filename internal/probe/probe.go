// Package probe implements the six check types a ServiceSpec can declare
// and dispatches to the right one by CheckType.
package probe

import (
	"context"
	"fmt"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/pkg/types"
)

// Config bundles the per-check timeouts and classification thresholds a
// probe needs; both come straight from the loaded config.Main.
type Config struct {
	Timeouts   config.TimeoutsCfg
	Thresholds config.ThresholdsCfg
}

// Func is the signature every check type implements. host is nil for the
// http and json_api types, which resolve their target from params.url
// instead of a host catalog entry.
type Func func(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult

var dispatch = map[types.CheckType]Func{
	types.CheckPing:    Ping,
	types.CheckHTTP:    HTTP,
	types.CheckDNS:     DNS,
	types.CheckTCP:     TCP,
	types.CheckSSLCert: SSLCert,
	types.CheckJSONAPI: JSONAPI,
}

// Run looks up svc.Type in the dispatch table and executes it. An
// unsupported type is a programmer error (config validation should have
// already rejected it) and is reported as a hard failure rather than a
// panic, matching the rest of the probe layer's all-errors-are-data
// contract. A panic inside the dispatched check function itself (a nil
// deref, an out-of-range index, etc.) is recovered here and converted to
// the same kind of hard-failure result, so one broken check can never
// take down the whole cycle.
func Run(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) (result types.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = types.CheckResult{
				HardFailure: true,
				Meta:        map[string]any{"internal_error": fmt.Sprintf("panic: %v", r)},
			}
		}
	}()

	fn, ok := dispatch[svc.Type]
	if !ok {
		return types.CheckResult{
			HardFailure: true,
			Meta:        map[string]any{"error": "unsupported check type: " + string(svc.Type)},
		}
	}
	return fn(ctx, svc, host, cfg)
}
