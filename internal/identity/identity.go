// Package identity resolves the vantage point a collector process runs
// from: region, country, city, and public IP. The result is attached to
// every measurement the process writes.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gnmradar/collector/pkg/types"
)

const lookupTimeout = 3 * time.Second

// Resolver discovers a ProbeIdentity once per process and caches it.
type Resolver struct {
	configFallback string
	httpClient     *http.Client
	ipifyURL       string
	geoURLTemplate string // %s replaced with the public IP

	cached atomic.Pointer[types.ProbeIdentity]
}

// NewResolver builds a Resolver that falls back to configRegion when env
// overrides and the geo-IP lookup both come up empty.
func NewResolver(configRegion string) *Resolver {
	return &Resolver{
		configFallback: configRegion,
		httpClient:     &http.Client{Timeout: lookupTimeout},
		ipifyURL:       "https://api.ipify.org?format=json",
		geoURLTemplate: "https://ipapi.co/%s/json/",
	}
}

// Resolve returns the cached identity if one has already been computed;
// otherwise it resolves env → geo-IP → config fallback, caches, and
// returns the result. Safe for concurrent use.
func (r *Resolver) Resolve(ctx context.Context) types.ProbeIdentity {
	if cached := r.cached.Load(); cached != nil {
		return *cached
	}

	id := r.resolveFromEnv()
	if id == nil {
		id = r.resolveFromGeoIP(ctx)
	}
	if id == nil {
		id = &types.ProbeIdentity{Region: r.configFallback, Source: "config"}
	}

	r.cached.Store(id)
	return *id
}

func (r *Resolver) resolveFromEnv() *types.ProbeIdentity {
	region := os.Getenv("GNM_REGION")
	if region == "" {
		return nil
	}
	return &types.ProbeIdentity{
		Region:   region,
		Country:  os.Getenv("GNM_COUNTRY"),
		City:     os.Getenv("GNM_CITY"),
		PublicIP: os.Getenv("GNM_PUBLIC_IP"),
		Source:   "env",
	}
}

type ipifyResponse struct {
	IP string `json:"ip"`
}

type geoResponse struct {
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	City        string `json:"city"`
}

// resolveFromGeoIP performs a single best-effort attempt; any failure
// returns nil rather than an error, since identity resolution must never
// block process startup.
func (r *Resolver) resolveFromGeoIP(ctx context.Context) *types.ProbeIdentity {
	ip := r.fetchPublicIP(ctx)
	if ip == "" {
		return nil
	}

	country, city := r.fetchGeo(ctx, ip)
	if country == "" {
		return nil
	}
	region := countryToRegion(country)

	return &types.ProbeIdentity{
		Region:   region,
		Country:  country,
		City:     city,
		PublicIP: ip,
		Source:   "geo",
	}
}

func (r *Resolver) fetchPublicIP(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ipifyURL, nil)
	if err != nil {
		return ""
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var out ipifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return out.IP
}

func (r *Resolver) fetchGeo(ctx context.Context, ip string) (country, city string) {
	url := strings.Replace(r.geoURLTemplate, "%s", ip, 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ""
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", ""
	}

	var out geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", ""
	}
	cc := out.CountryCode
	if cc == "" {
		cc = out.Country
	}
	return strings.ToUpper(cc), out.City
}
