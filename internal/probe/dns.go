package probe

import (
	"context"
	"net"
	"time"

	"github.com/gnmradar/collector/pkg/types"
)

// DNS resolves host.Address using the Go-native resolver. The default
// record type is A; params.record may request AAAA, CNAME, TXT, or MX
// instead (a supplemented option — the record a spec's ServiceSpec.DNS
// already carries a slot for).
func DNS(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult {
	if host == nil {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "dns requires a host"}}
	}

	timeout := time.Duration(cfg.Timeouts.DNSTimeoutSec) * time.Second
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver := &net.Resolver{PreferGo: true}
	record := svc.Params.DNS.Record
	if record == "" {
		record = "A"
	}

	start := time.Now()
	meta := map[string]any{"record": record}

	var resolveErr error
	switch record {
	case "A", "AAAA":
		network := "ip4"
		if record == "AAAA" {
			network = "ip6"
		}
		addrs, err := resolver.LookupIP(reqCtx, network, host.Address)
		resolveErr = err
		if err == nil {
			ips := make([]string, 0, len(addrs))
			for _, a := range addrs {
				ips = append(ips, a.String())
			}
			meta["answers"] = ips
		}
	case "CNAME":
		cname, err := resolver.LookupCNAME(reqCtx, host.Address)
		resolveErr = err
		if err == nil {
			meta["answers"] = []string{cname}
		}
	case "TXT":
		txts, err := resolver.LookupTXT(reqCtx, host.Address)
		resolveErr = err
		if err == nil {
			meta["answers"] = txts
		}
	case "MX":
		mxs, err := resolver.LookupMX(reqCtx, host.Address)
		resolveErr = err
		if err == nil {
			hosts := make([]string, 0, len(mxs))
			for _, mx := range mxs {
				hosts = append(hosts, mx.Host)
			}
			meta["answers"] = hosts
		}
	default:
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "unsupported dns record type: " + record}}
	}

	latency := time.Since(start).Milliseconds()
	if resolveErr != nil {
		meta["error"] = resolveErr.Error()
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
	}
	if answers, ok := meta["answers"].([]string); ok && len(answers) == 0 {
		meta["error"] = "empty answer"
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
	}
	truncateAnswers(meta)

	return classifySingleThreshold(latency, cfg.Thresholds.DNSWarnMS, meta)
}

const maxAnswersRecorded = 10

func truncateAnswers(meta map[string]any) {
	answers, ok := meta["answers"].([]string)
	if !ok || len(answers) <= maxAnswersRecorded {
		return
	}
	meta["answers"] = answers[:maxAnswersRecorded]
	meta["answers_truncated"] = true
}
