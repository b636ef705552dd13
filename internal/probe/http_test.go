package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/pkg/types"
)

func testConfig() Config {
	return Config{
		Timeouts: config.TimeoutsCfg{
			HTTPTimeoutSec: 2,
			DNSTimeoutSec:  2,
			TCPTimeoutSec:  2,
			JSONTimeoutSec: 2,
			PingTimeoutSec: 2,
		},
		Thresholds: config.ThresholdsCfg{
			HTTPWarnMS:     3000,
			HTTPVerySlowMS: 8000,
			DNSWarnMS:      1200,
			TCPWarnMS:      1500,
			TCPVerySlowMS:  4000,
			JSONWarnMS:     3000,
			JSONVerySlowMS: 8000,
			CertWarnDays:   14,
		},
	}
}

func TestHTTPOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckHTTP, Params: types.ServiceParams{HTTP: types.HTTPParams{URL: srv.URL}}}
	result := HTTP(context.Background(), svc, nil, testConfig())

	if result.HardFailure || result.Degraded {
		t.Fatalf("expected clean OK, got %#v", result)
	}
	if result.Meta["http_status"] != http.StatusOK {
		t.Fatalf("unexpected status in meta: %#v", result.Meta)
	}
}

func TestHTTPServerErrorIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckHTTP, Params: types.ServiceParams{HTTP: types.HTTPParams{URL: srv.URL}}}
	result := HTTP(context.Background(), svc, nil, testConfig())

	if !result.HardFailure {
		t.Fatalf("expected hard failure for 5xx, got %#v", result)
	}
}

func TestHTTPClientErrorIsDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckHTTP, Params: types.ServiceParams{HTTP: types.HTTPParams{URL: srv.URL}}}
	result := HTTP(context.Background(), svc, nil, testConfig())

	if !result.Degraded || result.HardFailure {
		t.Fatalf("expected degraded for 4xx, got %#v", result)
	}
}

func TestHTTPConnectionRefusedIsHardFailure(t *testing.T) {
	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckHTTP, Params: types.ServiceParams{HTTP: types.HTTPParams{URL: "http://127.0.0.1:1"}}}
	result := HTTP(context.Background(), svc, nil, testConfig())

	if !result.HardFailure {
		t.Fatalf("expected hard failure for connection refused, got %#v", result)
	}
}

func TestHTTPMissingURLIsHardFailure(t *testing.T) {
	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckHTTP}
	result := HTTP(context.Background(), svc, nil, testConfig())

	if !result.HardFailure {
		t.Fatalf("expected hard failure for missing url, got %#v", result)
	}
}
