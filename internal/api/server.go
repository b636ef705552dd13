// Package api implements the peripheral, read-only REST surface over the
// measurements table: last readings, per-target rollups, and
// timeseries, plus a target catalog built from the config snapshot. The
// collector process never imports this package — it is a separate
// binary (cmd/api) sharing only the store's read helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/logging"
	"github.com/gnmradar/collector/internal/store"
)

const (
	defaultLastLimit     = 100
	maxLastLimit         = 500
	defaultTimeseriesMin = 60
	maxTimeseriesMin     = 1440
)

// Dependencies bundles the API's collaborators.
type Dependencies struct {
	Log      *logging.Logger
	Store    *store.Reader
	Snapshot config.Snapshot
}

// Config controls HTTP server settings and per-IP rate limits.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestsPerMin float64
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8000"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestsPerMin <= 0 {
		c.RequestsPerMin = 60
	}
}

// New builds the HTTP server: gorilla/mux routing, a per-IP rate limiter
// modeled on the original's slowapi.Limiter, and the read-only handlers.
func New(cfg Config, deps Dependencies) *http.Server {
	cfg.applyDefaults()

	limiter := newIPRateLimiter(cfg.RequestsPerMin)

	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler(deps)).Methods(http.MethodGet)
	r.Handle("/api/last", limiter.middleware(lastHandler(deps))).Methods(http.MethodGet)
	r.Handle("/api/last-by-target", limiter.middleware(lastByTargetHandler(deps))).Methods(http.MethodGet)
	r.Handle("/api/timeseries", limiter.middleware(timeseriesHandler(deps))).Methods(http.MethodGet)
	r.Handle("/api/meta/targets", limiter.middleware(targetsMetaHandler(deps))).Methods(http.MethodGet)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func healthHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Ping(r.Context()); err != nil {
			http.Error(w, "datastore unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func lastHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		region := q.Get("region")
		limit := parseIntDefault(q.Get("limit"), defaultLastLimit, 1, maxLastLimit)
		offset := parseIntDefault(q.Get("offset"), 0, 0, 1_000_000)

		rows, err := deps.Store.FetchLast(r.Context(), region, limit, offset)
		if err != nil {
			deps.Log.Error("fetch last failed", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	}
}

func lastByTargetHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		region := r.URL.Query().Get("region")
		rows, err := deps.Store.FetchLastByTarget(r.Context(), region)
		if err != nil {
			deps.Log.Error("fetch last-by-target failed", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	}
}

func timeseriesHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		targetID := q.Get("target_id")
		if targetID == "" {
			http.Error(w, "target_id is required", http.StatusBadRequest)
			return
		}
		minutes := parseIntDefault(q.Get("minutes"), defaultTimeseriesMin, 1, maxTimeseriesMin)
		region := q.Get("region")

		points, err := deps.Store.FetchTimeseries(r.Context(), targetID, region, time.Duration(minutes)*time.Minute)
		if err != nil {
			deps.Log.Error("fetch timeseries failed", "error", err.Error())
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, points)
	}
}

// targetMeta is one row of the /api/meta/targets response, built purely
// from the loaded config snapshot — no datastore query needed.
type targetMeta struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HostID      string `json:"host_id,omitempty"`
	HostAddress string `json:"host_address,omitempty"`
	Enabled     bool   `json:"enabled"`
}

func targetsMetaHandler(deps Dependencies) http.HandlerFunc {
	out := make([]targetMeta, 0, len(deps.Snapshot.Services))
	for _, svc := range deps.Snapshot.Services {
		tm := targetMeta{ID: svc.ServiceID, Type: string(svc.Type), HostID: svc.HostID, Enabled: svc.Enabled}
		if host, ok := deps.Snapshot.Hosts[svc.HostID]; ok {
			tm.HostAddress = host.Address
		}
		out = append(out, tm)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, out)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func parseIntDefault(raw string, def, min, max int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
