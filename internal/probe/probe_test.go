package probe

import (
	"context"
	"testing"

	"github.com/gnmradar/collector/pkg/types"
)

func TestDispatchUnsupportedType(t *testing.T) {
	svc := types.ServiceSpec{ServiceID: "s1", Type: "not_a_real_type"}
	result := Run(context.Background(), svc, nil, testConfig())

	if !result.HardFailure {
		t.Fatalf("expected hard failure for unsupported type, got %#v", result)
	}
}

func TestDispatchCoversAllCheckTypes(t *testing.T) {
	for _, ct := range []types.CheckType{
		types.CheckPing, types.CheckHTTP, types.CheckDNS,
		types.CheckTCP, types.CheckSSLCert, types.CheckJSONAPI,
	} {
		if _, ok := dispatch[ct]; !ok {
			t.Errorf("no dispatch entry for check type %q", ct)
		}
	}
}
