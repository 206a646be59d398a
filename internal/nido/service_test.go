package nido_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"nido-go/internal/encryption"
	"nido-go/internal/export"
	"nido-go/internal/model"
	"nido-go/internal/nido"
	"nido-go/internal/testutil"
)

func newTestService(t *testing.T) (*nido.Service, nido.Store, *export.MemoryExporter) {
	t.Helper()

	store := testutil.NewTestStore(t)
	exporter := export.NewMemoryExporter("test")
	svc := nido.NewService(store, exporter, encryption.NewTestEncryptor(),
		nido.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	return svc, store, exporter
}

func TestService_LogEvent(t *testing.T) {
	t.Run("assigns id and date key", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		stored, err := svc.LogEvent(&model.Event{Type: model.TypeBath})
		if err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
		if stored.ID != "id-1" {
			t.Errorf("ID = %q, want id-1", stored.ID)
		}
		// No start: date key defaults to the clock's today.
		if stored.DateKey != "2026-03-10" {
			t.Errorf("DateKey = %q, want 2026-03-10", stored.DateKey)
		}
	})

	t.Run("date key defaults to start's date", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		e := testutil.Sleep(t, "", "2026-04-01", 9, 0, 10, 30)
		e.DateKey = ""

		stored, err := svc.LogEvent(e)
		if err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
		if stored.DateKey != "2026-04-01" {
			t.Errorf("DateKey = %q, want 2026-04-01", stored.DateKey)
		}
	})

	t.Run("keeps explicit id and date key", func(t *testing.T) {
		svc, store, _ := newTestService(t)

		e := testutil.BottleFeeding(t, "my-id", "2026-05-05", 60)
		if _, err := svc.LogEvent(e); err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}

		found, err := store.FindEventByID("my-id")
		if err != nil {
			t.Fatalf("FindEventByID() error = %v", err)
		}
		if found == nil || found.DateKey != "2026-05-05" {
			t.Errorf("stored event = %+v", found)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		if _, err := svc.LogEvent(&model.Event{Type: "nap"}); err == nil {
			t.Error("LogEvent() expected error for unknown type")
		}
	})

	t.Run("normalizes before write", func(t *testing.T) {
		svc, store, _ := newTestService(t)

		e := &model.Event{
			Type:     model.TypeSleep,
			DateKey:  "2026-03-10",
			Feeding:  &model.Feeding{Mode: model.ModeBottle, VolumeML: 90},
			Activity: "stray",
		}
		stored, err := svc.LogEvent(e)
		if err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}

		found, err := store.FindEventByID(stored.ID)
		if err != nil {
			t.Fatalf("FindEventByID() error = %v", err)
		}
		if found.Feeding != nil {
			t.Errorf("Feeding = %+v, want nil on a sleep event", found.Feeding)
		}
		if found.Activity != "" {
			t.Errorf("Activity = %q, want empty on a sleep event", found.Activity)
		}
	})
}

func TestService_UpdateEvent(t *testing.T) {
	t.Run("fully replaces by id", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		orig := testutil.BreastFeeding(t, "", "2026-03-10", 8, 0, 8, 20, model.SideLeft)
		stored, err := svc.LogEvent(orig)
		if err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}

		edit := testutil.BreastFeeding(t, stored.ID, "2026-03-10", 8, 0, 8, 25, model.SideRight)
		updated, err := svc.UpdateEvent(edit)
		if err != nil {
			t.Fatalf("UpdateEvent() error = %v", err)
		}
		if updated.Feeding.Side != model.SideRight {
			t.Errorf("Side = %q, want right", updated.Feeding.Side)
		}

		events, _, err := svc.Day("2026-03-10")
		if err != nil {
			t.Fatalf("Day() error = %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("Day() returned %d events, want 1 (replace, not insert)", len(events))
		}
	})

	t.Run("unknown id errors", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		e := testutil.BottleFeeding(t, "missing", "2026-03-10", 50)
		if _, err := svc.UpdateEvent(e); err == nil {
			t.Error("UpdateEvent() expected error for unknown id")
		}
	})

	t.Run("missing id errors", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		if _, err := svc.UpdateEvent(&model.Event{Type: model.TypeBath}); err == nil {
			t.Error("UpdateEvent() expected error for empty id")
		}
	})
}

func TestService_DeleteEvent(t *testing.T) {
	svc, _, _ := newTestService(t)

	stored, err := svc.LogEvent(&model.Event{Type: model.TypeBath, DateKey: "2026-03-10"})
	if err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}

	if err := svc.DeleteEvent(stored.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	events, _, err := svc.Day("2026-03-10")
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Day() returned %d events after delete, want 0", len(events))
	}

	// Deleting again is a no-op.
	if err := svc.DeleteEvent(stored.ID); err != nil {
		t.Errorf("second DeleteEvent() error = %v", err)
	}
}

func TestService_Day(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, e := range []*model.Event{
		testutil.BreastFeeding(t, "", "2026-03-10", 8, 0, 8, 20, model.SideLeft),
		testutil.BottleFeeding(t, "", "2026-03-10", 90),
		testutil.Sleep(t, "", "2026-03-10", 9, 0, 10, 30),
		testutil.Sleep(t, "", "2026-03-11", 13, 0, 14, 0), // other day
	} {
		if _, err := svc.LogEvent(e); err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
	}

	events, summary, err := svc.Day("2026-03-10")
	if err != nil {
		t.Fatalf("Day() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Day() returned %d events, want 3", len(events))
	}

	// The undated bottle feed sorts first, the rest chronologically.
	if events[0].Feeding == nil || events[0].Feeding.Mode != model.ModeBottle {
		t.Errorf("first event = %+v, want the undated bottle feed", events[0])
	}

	if summary.BreastDuration != 20*time.Minute ||
		summary.BottleVolumeML != 90 ||
		summary.SleepDuration != 90*time.Minute {
		t.Errorf("summary = %+v", summary)
	}
}

func TestService_ExportCSV(t *testing.T) {
	t.Run("plain export", func(t *testing.T) {
		svc, _, exporter := newTestService(t)

		for _, e := range []*model.Event{
			testutil.BreastFeeding(t, "", "2026-03-10", 8, 0, 8, 20, model.SideLeft),
			testutil.BottleFeeding(t, "", "2026-03-11", 90),
		} {
			if _, err := svc.LogEvent(e); err != nil {
				t.Fatalf("LogEvent() error = %v", err)
			}
		}

		count, err := svc.ExportCSV("out.csv", false)
		if err != nil {
			t.Fatalf("ExportCSV() error = %v", err)
		}
		if count != 2 {
			t.Errorf("ExportCSV() count = %d, want 2", count)
		}

		var buf bytes.Buffer
		if err := exporter.Get("out.csv", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("parsing export: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("export has %d records, want header + 2 rows", len(records))
		}
	})

	t.Run("encrypted export", func(t *testing.T) {
		svc, _, exporter := newTestService(t)

		if _, err := svc.LogEvent(&model.Event{Type: model.TypeBath, DateKey: "2026-03-10"}); err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}

		if _, err := svc.ExportCSV("out.csv.age", true); err != nil {
			t.Fatalf("ExportCSV() error = %v", err)
		}

		var buf bytes.Buffer
		if err := exporter.Get("out.csv.age", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		// The test encryptor prepends a marker header; the payload must not
		// start with the plaintext CSV header.
		if strings.HasPrefix(buf.String(), "id,type") {
			t.Error("encrypted export starts with plaintext csv header")
		}
	})

	t.Run("no exporter configured", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		svc := nido.NewService(store, nil, nil,
			nido.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())

		if _, err := svc.ExportCSV("out.csv", false); err == nil {
			t.Error("ExportCSV() expected error with no exporter")
		}
	})
}
