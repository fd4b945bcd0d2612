package transcript

import "testing"

func TestStore_UpsertAndOrder(t *testing.T) {
	s := NewStore()
	s.Upsert("seg-1", "hello")
	s.Upsert("seg-2", "world")
	s.Upsert("seg-1", "hello there")

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(snap))
	}
	if snap[0].ID != "seg-1" || snap[0].Text != "hello there" {
		t.Fatalf("unexpected first segment: %+v", snap[0])
	}
	if snap[1].ID != "seg-2" || snap[1].Text != "world" {
		t.Fatalf("unexpected second segment: %+v", snap[1])
	}
}

func TestStore_ReplayIsIdempotent(t *testing.T) {
	a := NewStore()
	b := NewStore()

	a.Upsert("seg-1", "final text")
	b.Upsert("seg-1", "final text")
	b.Upsert("seg-1", "final text")

	if a.Len() != b.Len() {
		t.Fatalf("lengths diverged: %d vs %d", a.Len(), b.Len())
	}
	at, _ := a.Get("seg-1")
	bt, _ := b.Get("seg-1")
	if at != bt {
		t.Fatalf("texts diverged: %q vs %q", at, bt)
	}
}

func TestStore_Latest(t *testing.T) {
	s := NewStore()
	if _, ok := s.Latest(); ok {
		t.Fatal("expected no latest segment on empty store")
	}
	s.Upsert("seg-1", "first")
	s.Upsert("seg-2", "second")
	// An update to an existing id does not change which segment is latest.
	s.Upsert("seg-1", "first again")

	latest, ok := s.Latest()
	if !ok {
		t.Fatal("expected a latest segment")
	}
	if latest.ID != "seg-2" || latest.Text != "second" {
		t.Fatalf("unexpected latest segment: %+v", latest)
	}
}
