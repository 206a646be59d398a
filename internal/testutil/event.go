package testutil

import (
	"testing"
	"time"

	"nido-go/internal/model"
)

// At builds a *time.Time on the given date at hour:min local time.
func At(t *testing.T, dateKey string, hour, min int) *time.Time {
	t.Helper()

	day, err := time.ParseInLocation(model.DateKeyLayout, dateKey, time.Local)
	if err != nil {
		t.Fatalf("bad date key %q: %v", dateKey, err)
	}
	ts := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.Local)
	return &ts
}

// BreastFeeding builds a breast feeding event on dateKey from start to end.
func BreastFeeding(t *testing.T, id, dateKey string, startHour, startMin, endHour, endMin int, side model.Side) *model.Event {
	t.Helper()

	return &model.Event{
		ID:      id,
		Type:    model.TypeFeeding,
		DateKey: dateKey,
		Start:   At(t, dateKey, startHour, startMin),
		End:     At(t, dateKey, endHour, endMin),
		Feeding: &model.Feeding{Mode: model.ModeBreast, Side: side},
	}
}

// BottleFeeding builds a bottle feeding event with the given volume.
func BottleFeeding(t *testing.T, id, dateKey string, volumeML float64) *model.Event {
	t.Helper()

	return &model.Event{
		ID:      id,
		Type:    model.TypeFeeding,
		DateKey: dateKey,
		Feeding: &model.Feeding{Mode: model.ModeBottle, VolumeML: volumeML},
	}
}

// Sleep builds a sleep event on dateKey from start to end.
func Sleep(t *testing.T, id, dateKey string, startHour, startMin, endHour, endMin int) *model.Event {
	t.Helper()

	return &model.Event{
		ID:      id,
		Type:    model.TypeSleep,
		DateKey: dateKey,
		Start:   At(t, dateKey, startHour, startMin),
		End:     At(t, dateKey, endHour, endMin),
	}
}
