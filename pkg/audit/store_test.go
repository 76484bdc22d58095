package audit

import (
	"context"
	"testing"
)

// memoryStore is an in-memory Store used to exercise the Store contract
// without a live database.
type memoryStore struct {
	entries []Entry
}

func (m *memoryStore) RecordRun(_ context.Context, entry Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryStore) ListRuns(_ context.Context, limit int) ([]Entry, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]Entry, limit)
	for i := 0; i < limit; i++ {
		out[i] = m.entries[len(m.entries)-1-i]
	}
	return out, nil
}

func TestMemoryStoreImplementsStore(t *testing.T) {
	var _ Store = &memoryStore{}
}

func TestMemoryStoreRecordAndList(t *testing.T) {
	store := &memoryStore{}
	ctx := context.Background()

	if err := store.RecordRun(ctx, Entry{RunID: "1", Year: 2025, Month: 3, ExitCode: 0}); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}
	if err := store.RecordRun(ctx, Entry{RunID: "2", Year: 2025, Month: 4, ExitCode: 1}); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "2" {
		t.Fatalf("expected newest-first order, got %+v", runs)
	}
}
