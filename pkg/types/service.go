// Package types holds the domain model shared by the collector's
// configuration loader, probes, classifier, and datastore writer.
package types

// CheckType enumerates the supported probe kinds.
type CheckType string

const (
	CheckPing    CheckType = "ping"
	CheckHTTP    CheckType = "http"
	CheckDNS     CheckType = "dns"
	CheckTCP     CheckType = "tcp"
	CheckSSLCert CheckType = "ssl_cert"
	CheckJSONAPI CheckType = "json_api"
)

// Valid reports whether t is one of the six supported check types.
func (t CheckType) Valid() bool {
	switch t {
	case CheckPing, CheckHTTP, CheckDNS, CheckTCP, CheckSSLCert, CheckJSONAPI:
		return true
	default:
		return false
	}
}

// HostSpec maps a host_id to a resolvable hostname or IP address.
type HostSpec struct {
	HostID  string `json:"host_id" yaml:"host_id"`
	Address string `json:"address" yaml:"address"`
}

// HTTPParams carries options shared by the http and json_api check types.
type HTTPParams struct {
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	ExpectField   string `json:"expect_field,omitempty" yaml:"expect_field,omitempty"`
	ExpectEquals  any    `json:"expect_equals,omitempty" yaml:"expect_equals,omitempty"`
}

// TCPParams carries options for the tcp and ssl_cert check types.
type TCPParams struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// DNSParams carries options for the dns check type.
type DNSParams struct {
	Record string `json:"record,omitempty" yaml:"record,omitempty"`
}

// ServiceParams is the closed, per-type parameter set for a ServiceSpec.
// Unlike an open map, a field access here either applies to the declared
// check type or is the zero value — config validation rejects unknown keys
// before a ServiceParams value is ever constructed (see internal/config).
type ServiceParams struct {
	HTTP HTTPParams `json:"-" yaml:"-"`
	TCP  TCPParams  `json:"-" yaml:"-"`
	DNS  DNSParams  `json:"-" yaml:"-"`
}

// ServiceSpec is one declared monitoring target, immutable for the lifetime
// of a configuration snapshot.
type ServiceSpec struct {
	ServiceID string        `json:"service_id" yaml:"service_id"`
	HostID    string        `json:"host_id,omitempty" yaml:"host_id,omitempty"`
	Type      CheckType     `json:"type" yaml:"type"`
	Enabled   bool          `json:"enabled" yaml:"enabled"`
	ProjectID *int          `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Params    ServiceParams `json:"params,omitempty" yaml:"params,omitempty"`
}
