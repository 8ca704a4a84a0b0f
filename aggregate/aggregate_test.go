package aggregate

import (
	"testing"
	"time"

	"creperie/api/models"
)

func rec(fp, anon, ip, ua, country, region string) models.EventRecord {
	return models.EventRecord{
		Event:       "page_view",
		Fingerprint: fp,
		AnonID:      anon,
		IP:          ip,
		UserAgent:   ua,
		Country:     country,
		Region:      region,
	}
}

func TestVisitorKeyFallbackChain(t *testing.T) {
	cases := []struct {
		name   string
		record models.EventRecord
		want   string
	}{
		{"fingerprint wins", rec("fp1", "anon1", "1.2.3.4", "ua", "", ""), "fp1"},
		{"anon id next", rec("", "anon1", "1.2.3.4", "ua", "", ""), "anon1|ua"},
		{"ip next", rec("", "", "1.2.3.4", "ua", "", ""), "1.2.3.4|ua"},
		{"bare user agent last", rec("", "", "", "ua", "", ""), "ua"},
	}
	for _, tc := range cases {
		if got := VisitorKey(tc.record); got != tc.want {
			t.Errorf("%s: VisitorKey = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func fourRecords() []models.EventRecord {
	// Three records share a visitor key, one is distinct.
	return []models.EventRecord{
		rec("fp-a", "", "", "ua", "France", "Bretagne"),
		rec("fp-a", "", "", "ua", "France", "Bretagne"),
		rec("fp-a", "", "", "ua", "France", "Bretagne"),
		rec("fp-b", "", "", "ua", "Spain", "Catalonia"),
	}
}

func TestAggregateUniqueMode(t *testing.T) {
	s := Aggregate(fourRecords(), ModeUnique)
	if s.Total != 2 {
		t.Errorf("unique total = %d, want 2", s.Total)
	}
	want := map[string]int{"France": 1, "Spain": 1}
	for _, b := range s.ByCountry {
		if want[b.Name] != b.Count {
			t.Errorf("country %s = %d, want %d", b.Name, b.Count, want[b.Name])
		}
	}
}

func TestAggregateEventsMode(t *testing.T) {
	s := Aggregate(fourRecords(), ModeEvents)
	if s.Total != 4 {
		t.Errorf("events total = %d, want 4", s.Total)
	}
	if len(s.ByCountry) != 2 || s.ByCountry[0].Name != "France" || s.ByCountry[0].Count != 3 {
		t.Errorf("events country breakdown = %+v", s.ByCountry)
	}
}

func TestAggregateUnknownCountryLabel(t *testing.T) {
	records := []models.EventRecord{rec("fp-x", "", "", "ua", "", "")}
	s := Aggregate(records, ModeEvents)
	if len(s.ByCountry) != 1 || s.ByCountry[0].Name != UnknownCountry {
		t.Errorf("empty country should be labelled %q, got %+v", UnknownCountry, s.ByCountry)
	}
}

func TestAggregateRegionRestrictedToFrance(t *testing.T) {
	records := []models.EventRecord{
		rec("fp-1", "", "", "ua", "Spain", "Catalonia"),
		rec("fp-2", "", "", "ua", "France", "Île-de-France"),
		rec("fp-3", "", "", "ua", "France", ""),
	}
	s := Aggregate(records, ModeEvents)
	for _, b := range s.ByRegionFR {
		if b.Name == "Catalonia" {
			t.Error("non-France regions must not appear in the region breakdown")
		}
	}
	want := map[string]int{"Île-de-France": 1, UnknownRegion: 1}
	if len(s.ByRegionFR) != len(want) {
		t.Fatalf("region breakdown = %+v", s.ByRegionFR)
	}
	for _, b := range s.ByRegionFR {
		if want[b.Name] != b.Count {
			t.Errorf("region %s = %d, want %d", b.Name, b.Count, want[b.Name])
		}
	}
}

func TestAggregateFirstOccurrenceWins(t *testing.T) {
	// Same visitor seen first in France, later in Spain: the caller
	// supplies most-recent-first input, so France sticks.
	records := []models.EventRecord{
		rec("fp-a", "", "", "ua", "France", "Bretagne"),
		rec("fp-a", "", "", "ua", "Spain", "Catalonia"),
	}
	s := Aggregate(records, ModeUnique)
	if len(s.ByCountry) != 1 || s.ByCountry[0].Name != "France" {
		t.Errorf("first occurrence should win, got %+v", s.ByCountry)
	}
}

func TestAggregateTieKeepsEncounterOrder(t *testing.T) {
	records := []models.EventRecord{
		rec("fp-1", "", "", "ua", "Belgique", ""),
		rec("fp-2", "", "", "ua", "Suisse", ""),
		rec("fp-3", "", "", "ua", "Italie", ""),
	}
	s := Aggregate(records, ModeEvents)
	wantOrder := []string{"Belgique", "Suisse", "Italie"}
	for i, b := range s.ByCountry {
		if b.Name != wantOrder[i] {
			t.Fatalf("tied buckets should keep encounter order, got %+v", s.ByCountry)
		}
	}
}

func TestTopPages(t *testing.T) {
	records := []models.EventRecord{
		{Event: "page_view", Page: "/carte"},
		{Event: "page_view", Page: "/carte"},
		{Event: "page_view", Page: "/"},
		{Event: "reservation_submitted"},
	}
	top := TopPages(records, 5)
	if len(top) != 2 {
		t.Fatalf("TopPages = %+v", top)
	}
	if top[0].Name != "/carte" || top[0].Count != 2 {
		t.Errorf("top page = %+v", top[0])
	}

	if limited := TopPages(records, 1); len(limited) != 1 {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestFilterApply(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.EventRecord{
		{Event: "page_view", Page: "/carte", Timestamp: base},
		{Event: "reservation_submitted", Metadata: map[string]any{"guests": 4}, Timestamp: base.Add(time.Hour)},
		{Event: "page_view", Page: "/contact", Timestamp: base.Add(48 * time.Hour)},
	}

	if got := Apply(records, Filter{Type: TypePageView}); len(got) != 2 {
		t.Errorf("page_view filter kept %d records", len(got))
	}
	if got := Apply(records, Filter{Type: TypeOther}); len(got) != 1 || got[0].Event != "reservation_submitted" {
		t.Errorf("other filter = %+v", got)
	}
	if got := Apply(records, Filter{Search: "CARTE"}); len(got) != 1 {
		t.Errorf("search should be case-insensitive, got %d records", len(got))
	}
	if got := Apply(records, Filter{Search: "guests"}); len(got) != 1 {
		t.Errorf("search should cover metadata, got %d records", len(got))
	}
	if got := Apply(records, Filter{From: base.Add(30 * time.Minute), To: base.Add(24 * time.Hour)}); len(got) != 1 {
		t.Errorf("date range filter kept %d records", len(got))
	}
}
