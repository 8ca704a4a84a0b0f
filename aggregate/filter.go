package aggregate

import (
	"encoding/json"
	"strings"
	"time"

	"creperie/api/models"
)

// Event type filters for the log explorer.
const (
	TypeAll      = "all"
	TypePageView = "page_view"
	TypeOther    = "other"
)

// Filter narrows a record window before aggregation or export.
// Zero-valued fields match everything.
type Filter struct {
	Search string
	Type   string
	From   time.Time
	To     time.Time
}

// Apply returns the records matching f, preserving input order.
func Apply(records []models.EventRecord, f Filter) []models.EventRecord {
	search := strings.ToLower(f.Search)
	out := make([]models.EventRecord, 0, len(records))
	for _, r := range records {
		if !matchType(r, f.Type) {
			continue
		}
		if !f.From.IsZero() && r.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.Timestamp.After(f.To) {
			continue
		}
		if search != "" && !strings.Contains(haystack(r), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchType(r models.EventRecord, typ string) bool {
	switch typ {
	case TypePageView:
		return r.Event == "page_view"
	case TypeOther:
		return r.Event != "page_view"
	default:
		return true
	}
}

func haystack(r models.EventRecord) string {
	meta, _ := json.Marshal(r.Metadata)
	return strings.ToLower(strings.Join([]string{
		r.Event, r.Page, r.IP, r.AnonID, r.Fingerprint, r.UserAgent, string(meta),
	}, " "))
}
