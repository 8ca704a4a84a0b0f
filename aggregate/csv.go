package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"creperie/api/models"
)

// csvHeader is the legacy export field order. Existing spreadsheets
// depend on it, so it is a de facto file format.
var csvHeader = []string{"ts", "event", "page", "ip", "anon_id", "fp", "user_agent", "metadata"}

// WriteCSV serializes records in the legacy export format: every value
// quoted, embedded quotes doubled, commas in the user agent folded to
// semicolons as the historical exporter did.
func WriteCSV(w io.Writer, records []models.EventRecord) error {
	if _, err := io.WriteString(w, strings.Join(csvHeader, ",")+"\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		meta := r.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", r.EventID, err)
		}
		fields := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.Event,
			r.Page,
			r.IP,
			r.AnonID,
			r.Fingerprint,
			strings.ReplaceAll(r.UserAgent, ",", ";"),
			string(metaJSON),
		}
		for i, f := range fields {
			fields[i] = quote(f)
		}
		if _, err := io.WriteString(w, strings.Join(fields, ",")+"\n"); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
