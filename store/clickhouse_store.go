package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"creperie/api/database"
	"creperie/api/models"
)

// ClickHouseStore persists analytics events in a hosted ClickHouse
// table.
type ClickHouseStore struct {
	DB *database.ClickHouseClient
}

func NewClickHouseStore(chClient *database.ClickHouseClient) *ClickHouseStore {
	return &ClickHouseStore{DB: chClient}
}

func (s *ClickHouseStore) Append(ctx context.Context, record models.EventRecord) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_event (
			event_id, event, page, anon_id, user_agent, ip, fp, country, region, metadata, ts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	meta, err := json.Marshal(record.Metadata)
	if err != nil {
		meta = []byte("{}")
	}

	if err := batch.Append(
		record.EventID,
		record.Event,
		record.Page,
		record.AnonID,
		record.UserAgent,
		record.IP,
		record.Fingerprint,
		record.Country,
		record.Region,
		string(meta),
		record.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to append event %s: %w", record.EventID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) Query(ctx context.Context, opts QueryOptions) ([]models.EventRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.DB.Conn.Query(ctx, `
		SELECT event_id, event, page, anon_id, user_agent, ip, fp, country, region, metadata, ts
		FROM analytics_event
		ORDER BY ts DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics events: %w", err)
	}
	defer rows.Close()

	var records []models.EventRecord
	for rows.Next() {
		var (
			r    models.EventRecord
			meta string
		)
		if err := rows.Scan(
			&r.EventID, &r.Event, &r.Page, &r.AnonID, &r.UserAgent,
			&r.IP, &r.Fingerprint, &r.Country, &r.Region, &meta, &r.Timestamp,
		); err != nil {
			slog.Error("error scanning analytics event row", "error", err)
			continue
		}
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
				slog.Debug("unparseable event metadata", "event_id", r.EventID, "error", err)
			}
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during analytics events query: %w", err)
	}
	return records, nil
}

// TopPages ranks page-view paths by view count inside [start, end].
func (s *ClickHouseStore) TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPageResult, error) {
	if limit == 0 {
		limit = 10
	}

	rows, err := s.DB.Conn.Query(ctx, `
		SELECT page, count() AS view_count
		FROM analytics_event
		WHERE event = 'page_view' AND ts >= ? AND ts <= ?
		GROUP BY page
		ORDER BY view_count DESC
		LIMIT ?
	`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	var results []models.TopPageResult
	for rows.Next() {
		var (
			page  string
			count uint64
		)
		if err := rows.Scan(&page, &count); err != nil {
			slog.Error("error scanning top pages row", "error", err)
			continue
		}
		results = append(results, models.TopPageResult{Page: page, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top pages: %w", err)
	}
	return results, nil
}
