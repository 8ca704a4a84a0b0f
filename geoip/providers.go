package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Provider resolves an IP to a coarse location. Providers are tried in
// order until one returns a usable country; adding or removing one is
// a wiring change, not a branch in the resolver.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, client *http.Client, ip string) (Geo, error)
}

// IPWhoProvider queries an ipwho.is-style endpoint:
// GET {base}/{ip} -> {"success": bool, "country": "...", "region": "..."}.
type IPWhoProvider struct {
	BaseURL string
}

func (p IPWhoProvider) Name() string { return "ipwho" }

func (p IPWhoProvider) Lookup(ctx context.Context, client *http.Client, ip string) (Geo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/"+url.PathEscape(ip), nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Geo{}, fmt.Errorf("ipwho: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Success    *bool  `json:"success"`
		Country    string `json:"country"`
		Region     string `json:"region"`
		RegionName string `json:"region_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Geo{}, fmt.Errorf("ipwho: decode: %w", err)
	}
	if body.Success != nil && !*body.Success {
		return Geo{}, fmt.Errorf("ipwho: lookup refused for %s", ip)
	}
	region := body.Region
	if region == "" {
		region = body.RegionName
	}
	return Geo{Country: body.Country, Region: region}, nil
}

// IPAPIProvider queries an ipapi.co-style endpoint:
// GET {base}/{ip}/json/ -> {"error": bool, "country_name": "...", "region": "..."}.
type IPAPIProvider struct {
	BaseURL string
}

func (p IPAPIProvider) Name() string { return "ipapi" }

func (p IPAPIProvider) Lookup(ctx context.Context, client *http.Client, ip string) (Geo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/"+url.PathEscape(ip)+"/json/", nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Geo{}, fmt.Errorf("ipapi: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Error       bool   `json:"error"`
		CountryName string `json:"country_name"`
		Region      string `json:"region"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Geo{}, fmt.Errorf("ipapi: decode: %w", err)
	}
	if body.Error {
		return Geo{}, fmt.Errorf("ipapi: lookup refused for %s", ip)
	}
	return Geo{Country: body.CountryName, Region: body.Region}, nil
}
