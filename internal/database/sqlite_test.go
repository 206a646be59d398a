package database

import (
	"errors"
	"testing"
	"time"

	"nido-go/internal/model"
	"nido-go/internal/nido"
)

// newTestStore creates a new in-memory store migrated to the latest schema.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func instant(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time %q: %v", value, err)
	}
	return &ts
}

func TestSQLiteStore_PutEvent(t *testing.T) {
	t.Run("round-trips all fields", func(t *testing.T) {
		store := newTestStore(t)

		event := &model.Event{
			ID:      "e1",
			Type:    model.TypeFeeding,
			DateKey: "2026-03-10",
			Start:   instant(t, "2026-03-10T08:00:00Z"),
			End:     instant(t, "2026-03-10T08:20:00Z"),
			Feeding: &model.Feeding{Mode: model.ModeBreast, Side: model.SideLeft},
			Notes:   "sleepy afterwards",
		}

		if _, err := store.PutEvent(event); err != nil {
			t.Fatalf("PutEvent() error = %v", err)
		}

		events, err := store.FindEventsByDate("2026-03-10")
		if err != nil {
			t.Fatalf("FindEventsByDate() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("got %d events, want 1", len(events))
		}

		got := events[0]
		if got.ID != "e1" || got.Type != model.TypeFeeding || got.DateKey != "2026-03-10" {
			t.Errorf("event = %+v", got)
		}
		if got.Start == nil || !got.Start.Equal(*event.Start) {
			t.Errorf("Start = %v, want %v", got.Start, event.Start)
		}
		if got.End == nil || !got.End.Equal(*event.End) {
			t.Errorf("End = %v, want %v", got.End, event.End)
		}
		if got.Feeding == nil || got.Feeding.Mode != model.ModeBreast || got.Feeding.Side != model.SideLeft {
			t.Errorf("Feeding = %+v", got.Feeding)
		}
		if got.Notes != "sleepy afterwards" {
			t.Errorf("Notes = %q", got.Notes)
		}
	})

	t.Run("round-trips bottle volume", func(t *testing.T) {
		store := newTestStore(t)

		event := &model.Event{
			ID:      "e1",
			Type:    model.TypeFeeding,
			DateKey: "2026-03-10",
			Feeding: &model.Feeding{Mode: model.ModeBottle, VolumeML: 87.5},
		}
		if _, err := store.PutEvent(event); err != nil {
			t.Fatalf("PutEvent() error = %v", err)
		}

		got, err := store.FindEventByID("e1")
		if err != nil {
			t.Fatalf("FindEventByID() error = %v", err)
		}
		if got.Feeding == nil || got.Feeding.VolumeML != 87.5 {
			t.Errorf("Feeding = %+v, want 87.5 ml bottle", got.Feeding)
		}
	})

	t.Run("replaces fully by id", func(t *testing.T) {
		store := newTestStore(t)

		first := &model.Event{
			ID: "e1", Type: model.TypePlay, DateKey: "2026-03-10",
			Activity: "blocks", Notes: "short session",
		}
		if _, err := store.PutEvent(first); err != nil {
			t.Fatalf("PutEvent() error = %v", err)
		}

		second := &model.Event{ID: "e1", Type: model.TypeBath, DateKey: "2026-03-11", BathNotes: "bubbles"}
		if _, err := store.PutEvent(second); err != nil {
			t.Fatalf("PutEvent(replace) error = %v", err)
		}

		got, err := store.FindEventByID("e1")
		if err != nil {
			t.Fatalf("FindEventByID() error = %v", err)
		}
		if got.Type != model.TypeBath || got.DateKey != "2026-03-11" {
			t.Errorf("event = %+v, want replaced bath event", got)
		}
		// The old row's fields are gone, not merged.
		if got.Activity != "" || got.Notes != "" {
			t.Errorf("stale fields survived replace: %+v", got)
		}

		old, err := store.FindEventsByDate("2026-03-10")
		if err != nil {
			t.Fatalf("FindEventsByDate() error = %v", err)
		}
		if len(old) != 0 {
			t.Errorf("old date still has %d events, want 0", len(old))
		}
	})

	t.Run("rejects missing id", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.PutEvent(&model.Event{Type: model.TypeBath, DateKey: "2026-03-10"})
		if err == nil {
			t.Fatal("PutEvent() expected error for missing id")
		}

		var storageErr *nido.StorageError
		if !errors.As(err, &storageErr) {
			t.Errorf("error = %T, want *nido.StorageError", err)
		}
	})
}

func TestSQLiteStore_FindEventByID(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FindEventByID("missing")
	if err != nil {
		t.Fatalf("FindEventByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindEventByID() = %+v, want nil for missing id", got)
	}
}

func TestSQLiteStore_Ordering(t *testing.T) {
	store := newTestStore(t)

	// Inserted out of order on purpose.
	events := []*model.Event{
		{ID: "late", Type: model.TypeSleep, DateKey: "2026-03-10", Start: instant(t, "2026-03-10T20:00:00Z")},
		{ID: "undated", Type: model.TypeBath, DateKey: "2026-03-10"},
		{ID: "early", Type: model.TypeSleep, DateKey: "2026-03-10", Start: instant(t, "2026-03-10T07:00:00Z")},
		{ID: "otherday", Type: model.TypeSleep, DateKey: "2026-03-11", Start: instant(t, "2026-03-11T01:00:00Z")},
	}
	for _, e := range events {
		if _, err := store.PutEvent(e); err != nil {
			t.Fatalf("PutEvent(%s) error = %v", e.ID, err)
		}
	}

	t.Run("by date: start ascending, undated first", func(t *testing.T) {
		got, err := store.FindEventsByDate("2026-03-10")
		if err != nil {
			t.Fatalf("FindEventsByDate() error = %v", err)
		}

		want := []string{"undated", "early", "late"}
		if len(got) != len(want) {
			t.Fatalf("got %d events, want %d", len(got), len(want))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("events[%d].ID = %s, want %s", i, got[i].ID, id)
			}
		}
	})

	t.Run("all events: same rule across dates", func(t *testing.T) {
		got, err := store.FindAllEvents()
		if err != nil {
			t.Fatalf("FindAllEvents() error = %v", err)
		}

		want := []string{"undated", "early", "late", "otherday"}
		if len(got) != len(want) {
			t.Fatalf("got %d events, want %d", len(got), len(want))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("events[%d].ID = %s, want %s", i, got[i].ID, id)
			}
		}
	})
}

func TestSQLiteStore_DeleteEvent(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.PutEvent(&model.Event{ID: "e1", Type: model.TypeBath, DateKey: "2026-03-10"}); err != nil {
		t.Fatalf("PutEvent() error = %v", err)
	}

	if err := store.DeleteEvent("e1"); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	byDate, err := store.FindEventsByDate("2026-03-10")
	if err != nil {
		t.Fatalf("FindEventsByDate() error = %v", err)
	}
	if len(byDate) != 0 {
		t.Errorf("FindEventsByDate() returned %d events after delete, want 0", len(byDate))
	}

	all, err := store.FindAllEvents()
	if err != nil {
		t.Fatalf("FindAllEvents() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("FindAllEvents() returned %d events after delete, want 0", len(all))
	}

	// Deleting a nonexistent id is a no-op.
	if err := store.DeleteEvent("never-existed"); err != nil {
		t.Errorf("DeleteEvent(nonexistent) error = %v, want nil", err)
	}
}

func TestSQLiteStore_Operations(t *testing.T) {
	store := newTestStore(t)

	op, err := store.CreateOperation("LogEvent", "type=bath")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if op.ID == 0 {
		t.Error("operation ID is zero")
	}
	if op.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}

	if err := store.FinishOperation(op.ID, "success"); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	second, err := store.CreateOperation("DeleteEvent", "")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	ops, err := store.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("ListOperations() returned %d, want 2", len(ops))
	}

	// Newest first.
	if ops[0].ID != second.ID {
		t.Errorf("ops[0].ID = %d, want %d", ops[0].ID, second.ID)
	}
	if ops[0].FinishedAt != nil {
		t.Errorf("unfinished op has FinishedAt = %v", ops[0].FinishedAt)
	}
	if ops[1].FinishedAt == nil || ops[1].Status != "success" {
		t.Errorf("finished op = %+v", ops[1])
	}

	t.Run("respects limit", func(t *testing.T) {
		ops, err := store.ListOperations(1)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 1 {
			t.Errorf("ListOperations(1) returned %d, want 1", len(ops))
		}
	})
}
