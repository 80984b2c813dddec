package core

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Import outcomes recorded in history and metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected" // backend refused some or all rows
	OutcomeFailed   = "failed"   // transport or internal error
)

// ImportRecord is one finished upload.
type ImportRecord struct {
	ID        uuid.UUID     `json:"id"`
	Entity    string        `json:"entity"`
	FileName  string        `json:"fileName"`
	Actor     string        `json:"actor,omitempty"`
	Rows      int           `json:"rows"`
	Uploaded  int           `json:"uploaded"`
	Failed    int           `json:"failed"`
	Outcome   string        `json:"outcome"`
	Message   string        `json:"message,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// HistoryStore persists import records.
type HistoryStore interface {
	Record(ctx context.Context, rec ImportRecord) error

	// Recent returns up to limit records, newest first. An empty entity
	// means all entities.
	Recent(ctx context.Context, entity string, limit int) ([]ImportRecord, error)

	// Prune deletes records started before cutoff and returns how many
	// were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryHistory is an in-process HistoryStore holding at most maxEntries
// records; the oldest are dropped first.
type MemoryHistory struct {
	mu         sync.RWMutex
	records    []ImportRecord // oldest first
	maxEntries int
}

// NewMemoryHistory creates an empty store. maxEntries <= 0 means 1000.
func NewMemoryHistory(maxEntries int) *MemoryHistory {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryHistory{maxEntries: maxEntries}
}

func (h *MemoryHistory) Record(_ context.Context, rec ImportRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	if over := len(h.records) - h.maxEntries; over > 0 {
		h.records = slices.Delete(h.records, 0, over)
	}
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, entity string, limit int) ([]ImportRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []ImportRecord
	for i := len(h.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if entity == "" || h.records[i].Entity == entity {
			out = append(out, h.records[i])
		}
	}
	return out, nil
}

func (h *MemoryHistory) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	before := len(h.records)
	h.records = slices.DeleteFunc(h.records, func(r ImportRecord) bool {
		return r.StartedAt.Before(cutoff)
	})
	return int64(before - len(h.records)), nil
}
