package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnmradar/collector/pkg/types"
)

// LoadHosts parses the JSON host catalog into a map keyed by host_id. A
// host_id repeated across entries is a load error — the catalog is the
// single source of truth for address resolution.
func LoadHosts(path string) (map[string]types.HostSpec, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read host catalog %q: %w", path, err)
	}

	var raw []types.HostSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse host catalog %q: %w", path, err)
	}

	hosts := make(map[string]types.HostSpec, len(raw))
	for _, h := range raw {
		if h.HostID == "" {
			return nil, fmt.Errorf("host catalog %q: entry missing host_id", path)
		}
		if _, dup := hosts[h.HostID]; dup {
			return nil, fmt.Errorf("host catalog %q: duplicate host_id %q", path, h.HostID)
		}
		hosts[h.HostID] = h
	}
	return hosts, nil
}
