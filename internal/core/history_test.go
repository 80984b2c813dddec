package core

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestMemoryHistory_RecentNewestFirst(t *testing.T) {
	h := NewMemoryHistory(10)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	for i, entity := range []string{"members", "claims", "members", "members"} {
		h.Record(ctx, ImportRecord{Entity: entity, FileName: entity + ".csv", Rows: i, StartedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	got, _ := h.Recent(ctx, "members", 2)
	if len(got) != 2 || got[0].Rows != 3 || got[1].Rows != 2 {
		t.Errorf("Recent(members, 2) rows = %v", rowsOf(got))
	}
	for _, r := range got {
		if r.ID == uuid.Nil {
			t.Error("record stored without an id")
		}
	}

	all, _ := h.Recent(ctx, "", 0)
	if len(all) != 4 {
		t.Errorf("Recent(all) = %d records, want 4", len(all))
	}
}

func TestMemoryHistory_MaxEntries(t *testing.T) {
	h := NewMemoryHistory(3)
	ctx := context.Background()
	for i := range 5 {
		h.Record(ctx, ImportRecord{Entity: "members", Rows: i})
	}

	got, _ := h.Recent(ctx, "", 0)
	if want := []int{4, 3, 2}; !equalInts(rowsOf(got), want) {
		t.Errorf("kept rows = %v, want %v", rowsOf(got), want)
	}
}

func TestPruneHistory(t *testing.T) {
	h := NewMemoryHistory(10)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	h.Record(ctx, ImportRecord{Entity: "members", Rows: 1, StartedAt: now.AddDate(0, -4, 0)})
	h.Record(ctx, ImportRecord{Entity: "members", Rows: 2, StartedAt: now.AddDate(0, 0, -1)})

	n, err := PruneHistory(ctx, h, 90*24*time.Hour, now)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}

	left, _ := h.Recent(ctx, "", 0)
	if len(left) != 1 || left[0].Rows != 2 {
		t.Errorf("remaining = %v, want [2]", rowsOf(left))
	}

	if n, _ := PruneHistory(ctx, h, 0, now); n != 0 {
		t.Errorf("zero retention pruned %d records", n)
	}
}

func TestStartHistoryPruner_InvalidSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := StartHistoryPruner(ctx, NewMemoryHistory(1), PruneConfig{Schedule: "not a schedule"}); err == nil {
		t.Error("StartHistoryPruner() accepted an invalid schedule")
	}
}

func TestStartHistoryPruner_Schedules(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := StartHistoryPruner(ctx, NewMemoryHistory(1), PruneConfig{Schedule: "@daily", Retention: time.Hour})
	if err != nil {
		t.Fatalf("StartHistoryPruner() error = %v", err)
	}
	entries := c.Entries()
	if len(entries) != 1 || entries[0].Next.IsZero() {
		t.Errorf("entries = %+v, want one scheduled job", entries)
	}
}

// TestPostgresHistory runs against a real database when
// TEST_DATABASE_URL is set.
func TestPostgresHistory(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	defer pool.Close()

	h, err := NewPostgresHistory(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresHistory() error = %v", err)
	}

	entity := "test-" + uuid.NewString()[:8]
	started := time.Now().UTC().Truncate(time.Millisecond)
	rec := ImportRecord{
		Entity: entity, FileName: "m.csv", Rows: 3, Uploaded: 2, Failed: 1,
		Outcome: OutcomeRejected, StartedAt: started, Duration: 1500 * time.Millisecond,
	}
	if err := h.Record(ctx, rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := h.Recent(ctx, entity, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Uploaded != 2 || got[0].Duration != rec.Duration || !got[0].StartedAt.Equal(started) {
		t.Errorf("Recent() = %+v", got)
	}

	n, err := h.Prune(ctx, started.Add(time.Second))
	if err != nil || n < 1 {
		t.Errorf("Prune() = (%d, %v), want at least 1 deleted", n, err)
	}
}

func rowsOf(recs []ImportRecord) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Rows
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
