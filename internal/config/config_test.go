package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleMainYAML = `
region: us-east
db:
  host: db.internal
  port: 5432
  user: gnmradar
  password: secret
  database: gnmradar
  sslmode: disable
collector:
  interval_sec: 30
  max_workers: 4
  thresholds:
    cert_warn_days: 14
metrics:
  addr: 127.0.0.1:9310
`

const sampleHostsJSON = `[
  {"host_id": "edge-1", "address": "203.0.113.10"},
  {"host_id": "edge-2", "address": "example.com"}
]`

const sampleServicesJSON = `[
  {"service_id": "edge-1-ping", "host_id": "edge-1", "type": "ping", "enabled": true},
  {"service_id": "edge-2-http", "type": "http", "enabled": true, "params": {"url": "https://example.com/health"}},
  {"service_id": "edge-1-tcp", "host_id": "edge-1", "type": "tcp", "enabled": false, "params": {"port": 22}}
]`

func writeAll(t *testing.T, dir string) (mainPath, hostsPath, servicesPath string) {
	t.Helper()
	mainPath = filepath.Join(dir, "config.yaml")
	hostsPath = filepath.Join(dir, "hosts.json")
	servicesPath = filepath.Join(dir, "services.json")

	if err := os.WriteFile(mainPath, []byte(sampleMainYAML), 0o600); err != nil {
		t.Fatalf("write main config: %v", err)
	}
	if err := os.WriteFile(hostsPath, []byte(sampleHostsJSON), 0o600); err != nil {
		t.Fatalf("write hosts: %v", err)
	}
	if err := os.WriteFile(servicesPath, []byte(sampleServicesJSON), 0o600); err != nil {
		t.Fatalf("write services: %v", err)
	}
	return mainPath, hostsPath, servicesPath
}

func TestLoadMain(t *testing.T) {
	dir := t.TempDir()
	mainPath, _, _ := writeAll(t, dir)

	cfg, err := LoadMain(mainPath)
	if err != nil {
		t.Fatalf("LoadMain returned error: %v", err)
	}
	if cfg.Region != "us-east" {
		t.Fatalf("unexpected region: %s", cfg.Region)
	}
	if cfg.Collector.IntervalSec != 30 {
		t.Fatalf("unexpected interval: %d", cfg.Collector.IntervalSec)
	}
	// untouched field picks up its documented default
	if cfg.Collector.Timeouts.HTTPTimeoutSec != 10 {
		t.Fatalf("unexpected default http timeout: %d", cfg.Collector.Timeouts.HTTPTimeoutSec)
	}
}

func TestLoadHosts(t *testing.T) {
	dir := t.TempDir()
	_, hostsPath, _ := writeAll(t, dir)

	hosts, err := LoadHosts(hostsPath)
	if err != nil {
		t.Fatalf("LoadHosts returned error: %v", err)
	}
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if hosts["edge-1"].Address != "203.0.113.10" {
		t.Fatalf("unexpected address for edge-1: %s", hosts["edge-1"].Address)
	}
}

func TestLoadHostsRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.json")
	dup := `[{"host_id":"a","address":"1.1.1.1"},{"host_id":"a","address":"2.2.2.2"}]`
	if err := os.WriteFile(path, []byte(dup), 0o600); err != nil {
		t.Fatalf("write hosts: %v", err)
	}

	if _, err := LoadHosts(path); err == nil {
		t.Fatal("expected error for duplicate host_id, got nil")
	}
}

func TestLoadServices(t *testing.T) {
	dir := t.TempDir()
	_, _, servicesPath := writeAll(t, dir)

	services, err := LoadServices(servicesPath)
	if err != nil {
		t.Fatalf("LoadServices returned error: %v", err)
	}
	if len(services) != 3 {
		t.Fatalf("expected 3 services, got %d", len(services))
	}
	http := services[1]
	if http.Params.HTTP.URL != "https://example.com/health" {
		t.Fatalf("unexpected http url: %s", http.Params.HTTP.URL)
	}
}

func TestLoadServicesRejectsUnknownParamKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.json")
	bad := `[{"service_id":"s1","host_id":"edge-1","type":"tcp","enabled":true,"params":{"port":22,"bogus":true}}]`
	if err := os.WriteFile(path, []byte(bad), 0o600); err != nil {
		t.Fatalf("write services: %v", err)
	}

	if _, err := LoadServices(path); err == nil {
		t.Fatal("expected error for unknown params key, got nil")
	}
}

func TestSnapshotLoadSucceeds(t *testing.T) {
	dir := t.TempDir()
	mainPath, hostsPath, servicesPath := writeAll(t, dir)

	snap, err := Load(mainPath, hostsPath, servicesPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(snap.EnabledServices()) != 2 {
		t.Fatalf("expected 2 enabled services, got %d", len(snap.EnabledServices()))
	}
}

func TestSnapshotLoadRejectsUnknownHostID(t *testing.T) {
	dir := t.TempDir()
	mainPath, hostsPath, _ := writeAll(t, dir)

	servicesPath := filepath.Join(dir, "services.json")
	bad := `[{"service_id":"s1","host_id":"does-not-exist","type":"ping","enabled":true}]`
	if err := os.WriteFile(servicesPath, []byte(bad), 0o600); err != nil {
		t.Fatalf("write services: %v", err)
	}

	if _, err := Load(mainPath, hostsPath, servicesPath); err == nil {
		t.Fatal("expected validation error for unknown host_id, got nil")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/explicit/path.yaml"); got != "/explicit/path.yaml" {
		t.Fatalf("flag value should win, got %s", got)
	}

	t.Setenv(envConfigPath, "/from/env.yaml")
	if got := ResolveConfigPath(""); got != "/from/env.yaml" {
		t.Fatalf("env value should be used, got %s", got)
	}
}
