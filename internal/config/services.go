package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnmradar/collector/pkg/types"
)

// rawService mirrors the JSON shape of a service catalog entry, keeping
// Params as raw bytes so it can be decoded into the type-specific struct
// named by Type.
type rawService struct {
	ServiceID string          `json:"service_id"`
	HostID    string          `json:"host_id,omitempty"`
	Type      types.CheckType `json:"type"`
	Enabled   *bool           `json:"enabled,omitempty"`
	ProjectID *int            `json:"project_id,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// LoadServices parses the JSON service catalog, decoding each entry's
// params into the closed struct for its declared check type and rejecting
// unknown fields — a malformed or mistyped params block is a load error,
// not a silently-ignored key.
func LoadServices(path string) ([]types.ServiceSpec, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read service catalog %q: %w", path, err)
	}

	var raws []rawService
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse service catalog %q: %w", path, err)
	}

	specs := make([]types.ServiceSpec, 0, len(raws))
	for _, r := range raws {
		spec, err := decodeService(r)
		if err != nil {
			return nil, fmt.Errorf("service catalog %q: %w", path, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func decodeService(r rawService) (types.ServiceSpec, error) {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	spec := types.ServiceSpec{
		ServiceID: r.ServiceID,
		HostID:    r.HostID,
		Type:      r.Type,
		Enabled:   enabled,
		ProjectID: r.ProjectID,
	}
	if r.ServiceID == "" {
		return spec, fmt.Errorf("entry missing service_id")
	}
	if !r.Type.Valid() {
		return spec, fmt.Errorf("service %q: unsupported check type %q", r.ServiceID, r.Type)
	}
	if len(r.Params) == 0 {
		return spec, nil
	}

	switch r.Type {
	case types.CheckHTTP, types.CheckJSONAPI:
		var p types.HTTPParams
		if err := strictUnmarshal(r.Params, &p); err != nil {
			return spec, fmt.Errorf("service %q: params: %w", r.ServiceID, err)
		}
		spec.Params.HTTP = p
	case types.CheckTCP, types.CheckSSLCert:
		var p types.TCPParams
		if err := strictUnmarshal(r.Params, &p); err != nil {
			return spec, fmt.Errorf("service %q: params: %w", r.ServiceID, err)
		}
		spec.Params.TCP = p
	case types.CheckDNS:
		var p types.DNSParams
		if err := strictUnmarshal(r.Params, &p); err != nil {
			return spec, fmt.Errorf("service %q: params: %w", r.ServiceID, err)
		}
		spec.Params.DNS = p
	case types.CheckPing:
		// ping takes no params; any non-empty object is a schema error.
		var empty struct{}
		if err := strictUnmarshal(r.Params, &empty); err != nil {
			return spec, fmt.Errorf("service %q: ping accepts no params: %w", r.ServiceID, err)
		}
	}
	return spec, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
