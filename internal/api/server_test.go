package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/pkg/types"
)

func TestParseIntDefault(t *testing.T) {
	cases := []struct {
		raw      string
		def, lo, hi, want int
	}{
		{"", 100, 1, 500, 100},
		{"50", 100, 1, 500, 50},
		{"not-a-number", 100, 1, 500, 100},
		{"0", 100, 1, 500, 1},
		{"9999", 100, 1, 500, 500},
	}
	for _, c := range cases {
		if got := parseIntDefault(c.raw, c.def, c.lo, c.hi); got != c.want {
			t.Errorf("parseIntDefault(%q, %d, %d, %d) = %d, want %d", c.raw, c.def, c.lo, c.hi, got, c.want)
		}
	}
}

func TestTargetsMetaHandlerBuildsFromSnapshot(t *testing.T) {
	snap := config.Snapshot{
		Hosts: map[string]types.HostSpec{
			"h1": {HostID: "h1", Address: "example.test"},
		},
		Services: []types.ServiceSpec{
			{ServiceID: "svc-1", HostID: "h1", Type: types.CheckTCP, Enabled: true},
			{ServiceID: "svc-2", Type: types.CheckHTTP, Enabled: false},
		},
	}

	handler := targetsMetaHandler(Dependencies{Snapshot: snap})
	req := httptest.NewRequest(http.MethodGet, "/api/meta/targets", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "svc-1") || !strings.Contains(body, "example.test") {
		t.Fatalf("expected response to include target and host address, got %s", body)
	}
	if !strings.Contains(body, "svc-2") {
		t.Fatalf("expected disabled services to still be listed, got %s", body)
	}
}
