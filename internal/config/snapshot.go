package config

import (
	"fmt"

	"github.com/gnmradar/collector/pkg/types"
)

// Snapshot is the immutable result of loading and validating all three
// configuration artifacts. It is built once at startup and handed down to
// every component; nothing in the collector mutates it.
type Snapshot struct {
	Main     Main
	Hosts    map[string]types.HostSpec
	Services []types.ServiceSpec
}

// EnabledServices returns only the services with Enabled set, in catalog
// order.
func (s Snapshot) EnabledServices() []types.ServiceSpec {
	out := make([]types.ServiceSpec, 0, len(s.Services))
	for _, svc := range s.Services {
		if svc.Enabled {
			out = append(out, svc)
		}
	}
	return out
}

// Load reads and validates the main config, host catalog, and service
// catalog, returning a ready-to-use Snapshot. This is the sole entry point
// the CLI surface calls; there is no reload path.
func Load(mainPath, hostsPath, servicesPath string) (Snapshot, error) {
	var snap Snapshot

	main, err := LoadMain(mainPath)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}

	hosts, err := LoadHosts(hostsPath)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}

	services, err := LoadServices(servicesPath)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}

	if err := Validate(main, hosts, services); err != nil {
		return snap, fmt.Errorf("validate config: %w", err)
	}

	snap.Main = main
	snap.Hosts = hosts
	snap.Services = services
	return snap, nil
}
