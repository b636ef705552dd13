// Package config loads and validates the collector's three configuration
// artifacts — the main YAML config, the JSON host catalog, and the JSON
// service catalog — and exposes an immutable Snapshot. There is no
// hot-reload: a fresh process re-reads and re-validates all three on every
// start.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath     = "GNM_CONFIG"
	DefaultConfigPath = "/etc/gnmradar/config.yaml"
)

// Main is the structured main config: region fallback, datastore
// connection and pool sizing, cycle cadence, worker cap, per-check
// timeouts, and classification thresholds.
type Main struct {
	Region    string       `yaml:"region"`
	DB        DBConfig     `yaml:"db"`
	Collector CollectorCfg `yaml:"collector"`
	Metrics   MetricsCfg   `yaml:"metrics"`
}

type DBConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	SSLMode       string `yaml:"sslmode"`
	PoolMinCached int    `yaml:"pool_mincached"`
	PoolMaxCached int    `yaml:"pool_maxcached"`
	PoolMaxConns  int    `yaml:"pool_maxconnections"`
}

type CollectorCfg struct {
	IntervalSec int           `yaml:"interval_sec"`
	MaxWorkers  int           `yaml:"max_workers"`
	Timeouts    TimeoutsCfg   `yaml:"timeouts"`
	Thresholds  ThresholdsCfg `yaml:"thresholds"`
}

type TimeoutsCfg struct {
	PingTimeoutSec int `yaml:"ping_timeout_sec"`
	HTTPTimeoutSec int `yaml:"http_timeout_sec"`
	DNSTimeoutSec  int `yaml:"dns_timeout_sec"`
	TCPTimeoutSec  int `yaml:"tcp_timeout_sec"`
	JSONTimeoutSec int `yaml:"json_timeout_sec"`
}

type ThresholdsCfg struct {
	PingWarnMS     int `yaml:"ping_warn_ms"`
	PingVerySlowMS int `yaml:"ping_very_slow_ms"`
	HTTPWarnMS     int `yaml:"http_warn_ms"`
	HTTPVerySlowMS int `yaml:"http_very_slow_ms"`
	DNSWarnMS      int `yaml:"dns_warn_ms"`
	TCPWarnMS      int `yaml:"tcp_warn_ms"`
	TCPVerySlowMS  int `yaml:"tcp_very_slow_ms"`
	JSONWarnMS     int `yaml:"json_warn_ms"`
	JSONVerySlowMS int `yaml:"json_very_slow_ms"`
	CertWarnDays   int `yaml:"cert_warn_days"`
}

type MetricsCfg struct {
	Addr string `yaml:"addr"`
}

// applyDefaults fills in the documented fallback values for any field
// left at its zero value after a YAML decode.
func (m *Main) applyDefaults() {
	setDefault(&m.Collector.MaxWorkers, 8)
	setDefault(&m.Collector.IntervalSec, 60)

	t := &m.Collector.Timeouts
	setDefault(&t.PingTimeoutSec, 2)
	setDefault(&t.HTTPTimeoutSec, 10)
	setDefault(&t.DNSTimeoutSec, 3)
	setDefault(&t.TCPTimeoutSec, 5)
	setDefault(&t.JSONTimeoutSec, 10)

	th := &m.Collector.Thresholds
	setDefault(&th.PingWarnMS, 500)
	setDefault(&th.PingVerySlowMS, 1500)
	setDefault(&th.HTTPWarnMS, 3000)
	setDefault(&th.HTTPVerySlowMS, 8000)
	setDefault(&th.DNSWarnMS, 1200)
	setDefault(&th.TCPWarnMS, 1500)
	setDefault(&th.TCPVerySlowMS, 4000)
	setDefault(&th.JSONWarnMS, 3000)
	setDefault(&th.JSONVerySlowMS, 8000)
	setDefault(&th.CertWarnDays, 14)

	setDefault(&m.DB.PoolMaxConns, 10)
	setDefault(&m.DB.PoolMinCached, 1)
	if m.DB.PoolMaxCached <= 0 {
		m.DB.PoolMaxCached = m.DB.PoolMaxConns
	}
	if m.Metrics.Addr == "" {
		m.Metrics.Addr = "127.0.0.1:9310"
	}
}

func setDefault(field *int, def int) {
	if *field <= 0 {
		*field = def
	}
}

// Interval returns the configured cycle period as a time.Duration.
func (m Main) Interval() time.Duration {
	return time.Duration(m.Collector.IntervalSec) * time.Second
}

// LoadMain parses the main config file and applies defaults. Cross-artifact
// validation (host_id references, per-type required params) happens once
// all three artifacts are loaded; see Validate.
func LoadMain(path string) (Main, error) {
	var cfg Main
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read main config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse main config %q: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ResolveConfigPath mirrors the CLI surface's precedence: an explicit flag
// wins, falling back to GNM_CONFIG, then DefaultConfigPath.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envConfigPath); v != "" {
		return v
	}
	return DefaultConfigPath
}
