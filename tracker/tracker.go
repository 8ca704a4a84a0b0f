// Package tracker assembles and records analytics events. The whole
// capture path is best-effort: enrichment failures degrade individual
// fields to empty values and only a store append failure surfaces as
// an error, which the HTTP handler — the single outermost call site —
// deliberately discards after logging.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"creperie/api/consent"
	"creperie/api/geoip"
	"creperie/api/identity"
	"creperie/api/models"
	"creperie/api/store"
)

// PageViewEvent is the reserved event name for page navigations.
const PageViewEvent = "page_view"

// Capture is everything the transport layer extracts from one capture
// call before the pipeline runs.
type Capture struct {
	Event     string
	Page      string
	Metadata  map[string]any
	Device    models.DeviceAttributes
	Consent   consent.State
	AnonID    string
	UserAgent string
	// ClientIP is the transport-observed peer address. Private and
	// loopback addresses are replaced by the resolved public IP.
	ClientIP string
}

type Tracker struct {
	store store.EventStore
	geo   *geoip.Resolver
	ids   *identity.Resolver
	log   *slog.Logger
	now   func() time.Time
}

func New(eventStore store.EventStore, geo *geoip.Resolver, ids *identity.Resolver, log *slog.Logger) *Tracker {
	return &Tracker{
		store: eventStore,
		geo:   geo,
		ids:   ids,
		log:   log,
		now:   time.Now,
	}
}

// WithClock injects the capture timestamp source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Track runs the capture pipeline: consent gate, IP resolution, device
// signature, geolocation, record assembly, store append. When consent
// is not given it returns (nil, nil) without side effects — a defined
// no-op, not an error. The same IP feeds both the signature and the
// geo lookup so the emitted record is internally consistent.
func (t *Tracker) Track(ctx context.Context, c Capture) (*models.EventRecord, error) {
	if !c.Consent.Given() {
		return nil, nil
	}

	ip := c.ClientIP
	if !geoip.UsableClientIP(ip) {
		ip = t.geo.PublicIP(ctx)
	}

	fingerprint := t.ids.Signature(c.UserAgent, c.Device, ip)
	geo := t.geo.Geo(ctx, ip)

	record := models.EventRecord{
		EventID:     ulid.Make().String(),
		Event:       c.Event,
		Page:        c.Page,
		AnonID:      c.AnonID,
		UserAgent:   c.UserAgent,
		IP:          ip,
		Fingerprint: fingerprint,
		Country:     geo.Country,
		Region:      geo.Region,
		Metadata:    c.Metadata,
		Timestamp:   t.now().UTC(),
	}

	if err := t.store.Append(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// TrackPageView is the convenience wrapper for page navigations.
func (t *Tracker) TrackPageView(ctx context.Context, c Capture) (*models.EventRecord, error) {
	c.Event = PageViewEvent
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return t.Track(ctx, c)
}
