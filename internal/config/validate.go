package config

import (
	"fmt"
	"log"

	"go.uber.org/multierr"

	"github.com/gnmradar/collector/pkg/types"
)

// Validate applies cross-artifact rules against an already loaded
// Main/hosts/services triple, accumulating every violation instead of
// stopping at the first. interval_sec below 10 is logged as a warning,
// not treated as a load failure.
func Validate(main Main, hosts map[string]types.HostSpec, services []types.ServiceSpec) error {
	var err error

	if main.DB.Host == "" {
		err = multierr.Append(err, fmt.Errorf("db.host is required"))
	}
	if main.DB.Database == "" {
		err = multierr.Append(err, fmt.Errorf("db.database is required"))
	}
	if main.Collector.MaxWorkers <= 0 {
		err = multierr.Append(err, fmt.Errorf("collector.max_workers must be positive"))
	}
	if main.Collector.IntervalSec <= 0 {
		err = multierr.Append(err, fmt.Errorf("collector.interval_sec must be positive"))
	} else if main.Collector.IntervalSec < 10 {
		log.Printf("config: collector.interval_sec=%d is below the recommended 10s floor", main.Collector.IntervalSec)
	}

	seen := make(map[string]struct{}, len(services))
	for _, svc := range services {
		if _, dup := seen[svc.ServiceID]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate service_id %q", svc.ServiceID))
			continue
		}
		seen[svc.ServiceID] = struct{}{}

		if !svc.Type.Valid() {
			err = multierr.Append(err, fmt.Errorf("service %q: unsupported check type %q", svc.ServiceID, svc.Type))
			continue
		}

		if svc.Type != types.CheckHTTP && svc.Type != types.CheckJSONAPI {
			if svc.HostID == "" {
				err = multierr.Append(err, fmt.Errorf("service %q: host_id is required for type %q", svc.ServiceID, svc.Type))
			} else if _, ok := hosts[svc.HostID]; !ok {
				err = multierr.Append(err, fmt.Errorf("service %q: host_id %q not found in host catalog", svc.ServiceID, svc.HostID))
			}
		}

		err = multierr.Append(err, validateParams(svc))
	}

	return err
}

func validateParams(svc types.ServiceSpec) error {
	switch svc.Type {
	case types.CheckHTTP, types.CheckJSONAPI:
		if svc.Params.HTTP.URL == "" {
			return fmt.Errorf("service %q: params.url is required for type %q", svc.ServiceID, svc.Type)
		}
	case types.CheckTCP:
		if svc.Params.TCP.Port <= 0 || svc.Params.TCP.Port > 65535 {
			return fmt.Errorf("service %q: params.port must be in 1..65535", svc.ServiceID)
		}
	case types.CheckSSLCert:
		// port 0 is allowed here; the ssl_cert probe defaults it to 443.
		if svc.Params.TCP.Port < 0 || svc.Params.TCP.Port > 65535 {
			return fmt.Errorf("service %q: params.port must be in 0..65535", svc.ServiceID)
		}
	}
	return nil
}
