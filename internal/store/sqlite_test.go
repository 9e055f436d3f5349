package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lyftr-ai/lyftr/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func testMessage(id, from, ts, text string) models.Message {
	return models.Message{
		MessageID:  id,
		FromMSISDN: from,
		ToMSISDN:   "+14155550100",
		TS:         ts,
		Text:       text,
	}
}

func mustInsert(t *testing.T, s *SQLiteStore, msg models.Message) {
	t.Helper()
	res, err := s.Insert(context.Background(), msg)
	if err != nil {
		t.Fatal(err)
	}
	if res != Inserted {
		t.Fatalf("expected Inserted for %s, got %v", msg.MessageID, res)
	}
}

func TestSchemaReady(t *testing.T) {
	s := newTestStore(t)
	if err := s.SchemaReady(context.Background()); err != nil {
		t.Errorf("schema should be ready after construction, got %v", err)
	}
}

func TestInsertAndExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("m1 should not exist yet")
	}

	mustInsert(t, s, testMessage("m1", "+919876543210", "2025-01-15T10:00:00Z", "Hello"))

	exists, err = s.Exists(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("m1 should exist after insert")
	}
}

func TestInsertDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, testMessage("m1", "+919876543210", "2025-01-15T10:00:00Z", "Hello"))

	res, err := s.Insert(ctx, testMessage("m1", "+919876543210", "2025-01-15T10:00:00Z", "Hello again"))
	if err != nil {
		t.Fatal(err)
	}
	if res != AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", res)
	}

	// The original row is untouched
	msgs, total, err := s.List(ctx, Filter{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(msgs) != 1 {
		t.Fatalf("expected exactly one row, got total=%d len=%d", total, len(msgs))
	}
	if msgs[0].Text != "Hello" {
		t.Errorf("duplicate insert must not mutate the row, text = %q", msgs[0].Text)
	}
}

func TestInsertConcurrentDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	msg := testMessage("race-1", "+919876543210", "2025-01-15T10:00:00Z", "Hello")

	const n = 8
	results := make([]InsertResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Insert(ctx, msg)
		}(i)
	}
	wg.Wait()

	inserted := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("insert %d failed: %v", i, errs[i])
		}
		if results[i] == Inserted {
			inserted++
		}
	}
	if inserted != 1 {
		t.Errorf("expected exactly one Inserted outcome, got %d", inserted)
	}

	_, total, err := s.List(ctx, Filter{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("expected exactly one persisted row, got %d", total)
	}
}

func TestListOrdering(t *testing.T) {
	s := newTestStore(t)

	// Insert in reverse timestamp order
	mustInsert(t, s, testMessage("m2", "+10", "2025-01-15T12:00:00Z", "second"))
	mustInsert(t, s, testMessage("m1", "+10", "2025-01-15T10:00:00Z", "first"))
	// Same ts as m2: message_id breaks the tie
	mustInsert(t, s, testMessage("m0", "+10", "2025-01-15T12:00:00Z", "tie"))

	msgs, total, err := s.List(context.Background(), Filter{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	var ids []string
	for _, m := range msgs {
		ids = append(ids, m.MessageID)
	}
	want := []string{"m1", "m0", "m2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, testMessage("m1", "+111", "2025-01-15T10:00:00Z", "hello world"))
	mustInsert(t, s, testMessage("m2", "+222", "2025-01-16T10:00:00Z", "goodbye world"))
	mustInsert(t, s, testMessage("m3", "+111", "2025-01-17T10:00:00Z", "hello again"))

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{
			name:    "from exact match",
			filter:  Filter{From: "+111", Limit: 10},
			wantIDs: []string{"m1", "m3"},
		},
		{
			name:    "since inclusive",
			filter:  Filter{Since: "2025-01-16T10:00:00Z", Limit: 10},
			wantIDs: []string{"m2", "m3"},
		},
		{
			name:    "q substring",
			filter:  Filter{Q: "hello", Limit: 10},
			wantIDs: []string{"m1", "m3"},
		},
		{
			name:    "conjunctive filters",
			filter:  Filter{From: "+111", Since: "2025-01-16T00:00:00Z", Q: "hello", Limit: 10},
			wantIDs: []string{"m3"},
		},
		{
			name:    "no match",
			filter:  Filter{From: "+999", Limit: 10},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, total, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if total != len(tt.wantIDs) {
				t.Errorf("total = %d, want %d", total, len(tt.wantIDs))
			}
			if len(msgs) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(msgs), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if msgs[i].MessageID != id {
					t.Errorf("msgs[%d] = %s, want %s", i, msgs[i].MessageID, id)
				}
			}
		})
	}
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)

	mustInsert(t, s, testMessage("m1", "+10", "2025-01-15T10:00:01Z", "a"))
	mustInsert(t, s, testMessage("m2", "+10", "2025-01-15T10:00:02Z", "b"))
	mustInsert(t, s, testMessage("m3", "+10", "2025-01-15T10:00:03Z", "c"))

	msgs, total, err := s.List(context.Background(), Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	// Total reflects the full filtered set, not the slice
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].MessageID != "m2" || msgs[1].MessageID != "m3" {
		t.Errorf("slice = [%s %s], want [m2 m3]", msgs[0].MessageID, msgs[1].MessageID)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0", stats.TotalMessages)
	}
	if stats.SendersCount != 0 {
		t.Errorf("SendersCount = %d, want 0", stats.SendersCount)
	}
	if len(stats.PerSender) != 0 {
		t.Errorf("PerSender should be empty, got %v", stats.PerSender)
	}
	if stats.FirstTS != nil || stats.LastTS != nil {
		t.Error("timestamps should be absent on an empty store")
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	mustInsert(t, s, testMessage("m1", "+111", "2025-01-15T10:00:00Z", "a"))
	mustInsert(t, s, testMessage("m2", "+111", "2025-01-16T10:00:00Z", "b"))
	mustInsert(t, s, testMessage("m3", "+222", "2025-01-17T10:00:00Z", "c"))

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", stats.TotalMessages)
	}
	if stats.SendersCount != 2 {
		t.Errorf("SendersCount = %d, want 2", stats.SendersCount)
	}
	if len(stats.PerSender) != 2 {
		t.Fatalf("PerSender len = %d, want 2", len(stats.PerSender))
	}
	if stats.PerSender[0].From != "+111" || stats.PerSender[0].Count != 2 {
		t.Errorf("top sender = %+v, want {+111 2}", stats.PerSender[0])
	}
	if stats.FirstTS == nil || *stats.FirstTS != "2025-01-15T10:00:00Z" {
		t.Errorf("FirstTS = %v, want 2025-01-15T10:00:00Z", stats.FirstTS)
	}
	if stats.LastTS == nil || *stats.LastTS != "2025-01-17T10:00:00Z" {
		t.Errorf("LastTS = %v, want 2025-01-17T10:00:00Z", stats.LastTS)
	}
}

func TestStatsTieBreak(t *testing.T) {
	s := newTestStore(t)

	mustInsert(t, s, testMessage("m1", "+222", "2025-01-15T10:00:00Z", "a"))
	mustInsert(t, s, testMessage("m2", "+111", "2025-01-15T11:00:00Z", "b"))

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Equal counts: sender string breaks the tie deterministically
	if stats.PerSender[0].From != "+111" || stats.PerSender[1].From != "+222" {
		t.Errorf("tie order = [%s %s], want [+111 +222]", stats.PerSender[0].From, stats.PerSender[1].From)
	}
}

func TestCreatedAtAssigned(t *testing.T) {
	s := newTestStore(t)

	mustInsert(t, s, testMessage("m1", "+10", "2025-01-15T10:00:00Z", "a"))

	msgs, _, err := s.List(context.Background(), Filter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if msgs[0].CreatedAt == "" {
		t.Error("created_at should be server-assigned on insert")
	}
}
