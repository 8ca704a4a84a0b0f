// Package geoip enriches captured events with the caller's public IP
// and a coarse geolocation (country/region). Every lookup is
// best-effort: failures degrade to empty values and never propagate to
// the capture path. Two independent time-boxed caches keep the
// external providers out of the hot path.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"
)

const (
	ipCacheTTL  = 2 * time.Hour
	geoCacheTTL = 7 * 24 * time.Hour

	ipTimeout  = 1200 * time.Millisecond
	geoTimeout = 1500 * time.Millisecond

	// single-slot key for the public IP cache
	ipCacheKey = "public-ip"
)

// Geo is a coarse location. Both fields are empty when unresolved.
type Geo struct {
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Resolver owns the IP echo endpoint, the ordered provider chain and
// both caches. Safe for concurrent use.
type Resolver struct {
	client     *http.Client
	ipEndpoint string
	providers  []Provider
	ipCache    *ttlCache[string]
	geoCache   *ttlCache[Geo]
	log        *slog.Logger
}

// Option tweaks a Resolver at construction time.
type Option func(*Resolver)

// WithClock injects the time source used by both caches.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.ipCache.now = now
		r.geoCache.now = now
	}
}

// WithProviders replaces the geolocation provider chain.
func WithProviders(providers ...Provider) Option {
	return func(r *Resolver) { r.providers = providers }
}

// WithIPEndpoint replaces the public-IP echo endpoint.
func WithIPEndpoint(endpoint string) Option {
	return func(r *Resolver) { r.ipEndpoint = endpoint }
}

func NewResolver(log *slog.Logger, opts ...Option) *Resolver {
	now := time.Now
	r := &Resolver{
		client:     &http.Client{},
		ipEndpoint: "https://api64.ipify.org?format=json",
		providers: []Provider{
			IPWhoProvider{BaseURL: "https://ipwho.is"},
			IPAPIProvider{BaseURL: "https://ipapi.co"},
		},
		ipCache:  newTTLCache[string](ipCacheTTL, now),
		geoCache: newTTLCache[Geo](geoCacheTTL, now),
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PublicIP resolves the server's public address via the echo endpoint,
// reusing a cached value younger than two hours. It returns "" on any
// failure rather than an error; capture continues without the IP.
func (r *Resolver) PublicIP(ctx context.Context) string {
	if ip, ok := r.ipCache.get(ipCacheKey); ok {
		return ip
	}
	ip, err := r.fetchPublicIP(ctx)
	if err != nil {
		r.log.Debug("public ip lookup failed", "error", err)
		return ""
	}
	r.ipCache.put(ipCacheKey, ip)
	return ip
}

func (r *Resolver) fetchPublicIP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ipTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ipEndpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip echo: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ip echo: decode: %w", err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("ip echo: empty response")
	}
	return body.IP, nil
}

// Geo resolves the country and region for ip, trying each provider in
// order until one returns a usable country. An empty ip short-circuits
// without touching the network. Failed lookups are not cached, so a
// transient provider outage does not pin an empty result for a week.
func (r *Resolver) Geo(ctx context.Context, ip string) Geo {
	if ip == "" {
		return Geo{}
	}
	if geo, ok := r.geoCache.get(ip); ok {
		return geo
	}
	for _, p := range r.providers {
		geo, err := r.lookup(ctx, p, ip)
		if err != nil {
			r.log.Debug("geo lookup failed", "provider", p.Name(), "ip", ip, "error", err)
			continue
		}
		if geo.Country == "" {
			continue
		}
		r.geoCache.put(ip, geo)
		return geo
	}
	return Geo{}
}

func (r *Resolver) lookup(ctx context.Context, p Provider, ip string) (Geo, error) {
	ctx, cancel := context.WithTimeout(ctx, geoTimeout)
	defer cancel()
	return p.Lookup(ctx, r.client, ip)
}

// UsableClientIP reports whether addr is a public address worth
// enriching. Loopback and RFC 1918 addresses show up in local and
// demo deployments and carry no location signal.
func UsableClientIP(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() && !ip.IsLinkLocalUnicast()
}
