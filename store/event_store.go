package store

import (
	"context"
	"time"

	"creperie/api/models"
)

// EventStore is the append-only log of captured analytics records.
// Append must never mutate an existing record; duplicate writes from
// retries are tolerated downstream by the aggregation visitor key, not
// by store-level uniqueness.
type EventStore interface {
	Append(ctx context.Context, record models.EventRecord) error
	// Query returns up to opts.Limit records in descending timestamp
	// order.
	Query(ctx context.Context, opts QueryOptions) ([]models.EventRecord, error)
}

type QueryOptions struct {
	Limit int
}

// PageStats is implemented by stores that can rank pages server-side.
// Callers fall back to in-process aggregation when it is absent.
type PageStats interface {
	TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPageResult, error)
}
