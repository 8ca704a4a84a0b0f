// Package aggregate computes reporting views over a window of captured
// events: unique-visitor and raw-event breakdowns by country and
// French region, top-page rankings, record filtering and CSV export.
// Everything here is pure; callers supply the record window.
package aggregate

import (
	"sort"

	"creperie/api/models"
)

// Mode selects what the breakdowns count. Raw event counts and unique
// visitor counts answer different questions (traffic volume vs reach),
// so both are derivable from the same record window.
type Mode string

const (
	ModeUnique Mode = "unique"
	ModeEvents Mode = "events"
)

// ParseMode defaults to unique-visitor counting.
func ParseMode(s string) Mode {
	if Mode(s) == ModeEvents {
		return ModeEvents
	}
	return ModeUnique
}

// Labels for records whose enrichment never resolved.
const (
	UnknownCountry = "Inconnu"
	UnknownRegion  = "Inconnue"
)

const franceCountry = "France"

// Bucket is one row of a breakdown.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the engine's output: breakdowns sorted by count
// descending (ties keep encounter order) and the total of whatever the
// mode counts.
type Summary struct {
	ByCountry  []Bucket `json:"byCountry"`
	ByRegionFR []Bucket `json:"byRegionFR"`
	Total      int      `json:"total"`
}

// VisitorKey computes the de-duplication identity for a record from
// the best available signal: fingerprint, else anonId+UA, else IP+UA,
// else the bare user agent. The last resort conflates visitors sharing
// a browser/OS combination behind a NAT; that is a known accuracy
// limitation, accepted for a marketing dashboard.
func VisitorKey(r models.EventRecord) string {
	if r.Fingerprint != "" {
		return r.Fingerprint
	}
	if r.AnonID != "" {
		return r.AnonID + "|" + r.UserAgent
	}
	if r.IP != "" {
		return r.IP + "|" + r.UserAgent
	}
	return r.UserAgent
}

// Aggregate folds records into country and French-region breakdowns.
// In unique mode, records collapse onto their VisitorKey first
// (first occurrence wins, so input order matters and is the caller's
// contract — typically most-recent-first). In events mode every record
// counts.
func Aggregate(records []models.EventRecord, mode Mode) Summary {
	byCountry := newCounter()
	byRegionFR := newCounter()

	tally := func(r models.EventRecord) {
		country := r.Country
		if country == "" {
			country = UnknownCountry
		}
		byCountry.add(country)
		if country == franceCountry {
			region := r.Region
			if region == "" {
				region = UnknownRegion
			}
			byRegionFR.add(region)
		}
	}

	total := len(records)
	if mode == ModeUnique {
		seen := make(map[string]struct{}, len(records))
		for _, r := range records {
			key := VisitorKey(r)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tally(r)
		}
		total = len(seen)
	} else {
		for _, r := range records {
			tally(r)
		}
	}

	return Summary{
		ByCountry:  byCountry.buckets(),
		ByRegionFR: byRegionFR.buckets(),
		Total:      total,
	}
}

// TopPages ranks page paths by view count across the window. Records
// without a page (non page-view events) are skipped.
func TopPages(records []models.EventRecord, limit int) []Bucket {
	pages := newCounter()
	for _, r := range records {
		if r.Page != "" {
			pages.add(r.Page)
		}
	}
	out := pages.buckets()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// counter accumulates name counts while remembering first-encounter
// order, so ties sort deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

func (c *counter) buckets() []Bucket {
	out := make([]Bucket, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Bucket{Name: name, Count: c.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
