package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gnmradar/collector/pkg/types"
)

// bodySamples beyond this many characters are truncated before being
// attached to a failure result's meta.
const bodySampleLimit = 256

// JSONAPI issues a GET against params.url, decodes the JSON body, and
// optionally asserts that params.expect_field (a dotted path, e.g.
// "data.status") exists and, if params.expect_equals is set, equals it.
// The original only supported a single top-level key; this extends it to
// nested paths while keeping the flat case as the common one.
func JSONAPI(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult {
	url := svc.Params.HTTP.URL
	if url == "" {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "params.url is required"}}
	}

	timeout := time.Duration(cfg.Timeouts.JSONTimeoutSec) * time.Second
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: timeout}
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

	rawBody, readErr := io.ReadAll(resp.Body)

	meta := map[string]any{"http_status": resp.StatusCode}
	if resp.StatusCode >= 400 {
		meta["body_sample"] = truncateBody(rawBody)
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
	}
	if readErr != nil {
		meta["error"] = fmt.Sprintf("read body: %v", readErr)
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
	}

	var body any
	if err := json.Unmarshal(rawBody, &body); err != nil {
		meta["error"] = fmt.Sprintf("invalid json: %v", err)
		meta["body_sample"] = truncateBody(rawBody)
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
	}

	if field := svc.Params.HTTP.ExpectField; field != "" {
		value, found := walkDottedPath(body, field)
		if !found {
			meta["error"] = fmt.Sprintf("expected field %q not found", field)
			meta["body_sample"] = truncateBody(rawBody)
			return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
		}
		meta["expect_field_value"] = value

		if expect := svc.Params.HTTP.ExpectEquals; expect != nil {
			if !valuesEqual(value, expect) {
				meta["error"] = fmt.Sprintf("field %q = %v, want %v", field, value, expect)
				meta["body_sample"] = truncateBody(rawBody)
				return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: meta}
			}
		}
	}

	return classifyLatency(latency, cfg.Thresholds.JSONWarnMS, cfg.Thresholds.JSONVerySlowMS, meta)
}

// walkDottedPath descends a decoded JSON value (maps of string to any)
// along a dot-separated path such as "data.status".
func walkDottedPath(body any, path string) (any, bool) {
	cur := body
	for _, segment := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		val, ok := m[segment]
		if !ok {
			return nil, false
		}
		cur = val
	}
	return cur, true
}

func valuesEqual(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// truncateBody returns the first bodySampleLimit characters of body as a
// string, for attaching a failure's response sample to meta.
func truncateBody(body []byte) string {
	r := []rune(string(body))
	if len(r) > bodySampleLimit {
		return string(r[:bodySampleLimit])
	}
	return string(r)
}
