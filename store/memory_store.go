package store

import (
	"context"
	"sort"
	"sync"

	"creperie/api/models"
)

// MemoryStore is the demo-mode event store: a bounded in-process list
// that evicts its oldest records beyond a fixed cap. It mirrors the
// hosted store's contract so the rest of the pipeline cannot tell the
// difference.
type MemoryStore struct {
	mu      sync.Mutex
	cap     int
	records []models.EventRecord
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStore{cap: capacity}
}

func (s *MemoryStore) Append(_ context.Context, record models.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, opts QueryOptions) ([]models.EventRecord, error) {
	s.mu.Lock()
	out := make([]models.EventRecord, len(s.records))
	copy(out, s.records)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
