package manifest

import (
	"context"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Manifest {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestLookup_Missing(t *testing.T) {
	m := openTest(t)
	e, err := m.Lookup(context.Background(), "alice", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("expected nil for unknown source, got %+v", e)
	}
}

func TestRecordAndLookup(t *testing.T) {
	m := openTest(t)
	ctx := context.Background()
	want := Entry{UserID: "alice", Source: "notes.txt", ChunkSize: 800, Overlap: 100, Fragments: 7}
	if err := m.Record(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := m.Lookup(ctx, "alice", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRecord_Upsert(t *testing.T) {
	m := openTest(t)
	ctx := context.Background()
	first := Entry{UserID: "alice", Source: "notes.txt", ChunkSize: 800, Overlap: 100, Fragments: 7}
	if err := m.Record(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := first
	second.ChunkSize = 500
	second.Overlap = 50
	second.Fragments = 11
	if err := m.Record(ctx, second); err != nil {
		t.Fatal(err)
	}
	got, err := m.Lookup(ctx, "alice", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != second {
		t.Errorf("got %+v, want %+v", got, second)
	}
}

func TestEntries_ScopedByUser(t *testing.T) {
	m := openTest(t)
	ctx := context.Background()
	_ = m.Record(ctx, Entry{UserID: "alice", Source: "doc", ChunkSize: 800, Overlap: 100, Fragments: 3})
	_ = m.Record(ctx, Entry{UserID: "bob", Source: "doc", ChunkSize: 800, Overlap: 100, Fragments: 5})

	got, err := m.Lookup(ctx, "bob", "doc")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Fragments != 5 {
		t.Errorf("bob's entry: got %+v", got)
	}
}
