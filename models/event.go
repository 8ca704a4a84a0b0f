package models

import "time"

// EventRecord represents a single captured analytics occurrence.
// Records are immutable once written; the store is append-only.
type EventRecord struct {
	EventID     string         `json:"eventId"`
	Event       string         `json:"event"`
	Page        string         `json:"page,omitempty"`
	AnonID      string         `json:"anonId"`
	UserAgent   string         `json:"userAgent"`
	IP          string         `json:"ip,omitempty"`
	Fingerprint string         `json:"fp,omitempty"`
	Country     string         `json:"country,omitempty"`
	Region      string         `json:"region,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"ts"`
}

// DeviceAttributes carries the environment hints the client reports
// alongside a capture. All fields are optional; empty values still
// produce a usable device signature.
type DeviceAttributes struct {
	Platform     string   `json:"platform,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	CPUCount     int      `json:"hardwareConcurrency,omitempty"`
	DeviceMemory float64  `json:"deviceMemory,omitempty"`
	ScreenWidth  int      `json:"screenWidth,omitempty"`
	ScreenHeight int      `json:"screenHeight,omitempty"`
	ColorDepth   int      `json:"colorDepth,omitempty"`
	Timezone     string   `json:"timezone,omitempty"`
}

// TrackRequest is the body of a capture call from the site.
type TrackRequest struct {
	Event    string           `json:"event"`
	Page     string           `json:"page"`
	Metadata map[string]any   `json:"metadata"`
	Device   DeviceAttributes `json:"device"`
}

type TopPageResult struct {
	Page  string `json:"page"`
	Count uint64 `json:"count"`
}
