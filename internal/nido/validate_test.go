package nido_test

import (
	"testing"

	"nido-go/internal/model"
	"nido-go/internal/nido"
	"nido-go/internal/testutil"
)

func hasWarning(warnings []nido.Warning, code nido.WarningCode) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	t.Run("clean event has no warnings", func(t *testing.T) {
		e := testutil.BreastFeeding(t, "e1", "2026-03-10", 8, 0, 8, 20, model.SideLeft)
		if warnings := nido.Validate(e); len(warnings) != 0 {
			t.Errorf("Validate() = %v, want no warnings", warnings)
		}
	})

	t.Run("reversed interval warns", func(t *testing.T) {
		e := testutil.Sleep(t, "e1", "2026-03-10", 10, 0, 9, 0)
		warnings := nido.Validate(e)
		if !hasWarning(warnings, nido.WarnReversedInterval) {
			t.Errorf("Validate() = %v, want reversed_interval warning", warnings)
		}
	})

	t.Run("breast feeding without side warns", func(t *testing.T) {
		e := testutil.BreastFeeding(t, "e1", "2026-03-10", 8, 0, 8, 20, model.SideUnset)
		warnings := nido.Validate(e)
		if !hasWarning(warnings, nido.WarnMissingSide) {
			t.Errorf("Validate() = %v, want missing_side warning", warnings)
		}
	})

	t.Run("bottle feeding without side does not warn", func(t *testing.T) {
		e := testutil.BottleFeeding(t, "e1", "2026-03-10", 90)
		if warnings := nido.Validate(e); len(warnings) != 0 {
			t.Errorf("Validate() = %v, want no warnings", warnings)
		}
	})

	t.Run("absent endpoints do not warn", func(t *testing.T) {
		e := &model.Event{ID: "e1", Type: model.TypeBath, DateKey: "2026-03-10"}
		if warnings := nido.Validate(e); len(warnings) != 0 {
			t.Errorf("Validate() = %v, want no warnings", warnings)
		}
	})

	t.Run("both checks can fire together", func(t *testing.T) {
		e := testutil.BreastFeeding(t, "e1", "2026-03-10", 9, 0, 8, 0, model.SideUnset)
		warnings := nido.Validate(e)
		if len(warnings) != 2 {
			t.Fatalf("Validate() returned %d warnings, want 2: %v", len(warnings), warnings)
		}
		if !hasWarning(warnings, nido.WarnReversedInterval) || !hasWarning(warnings, nido.WarnMissingSide) {
			t.Errorf("Validate() = %v, want both warnings", warnings)
		}
	})

	t.Run("empty free text is fine", func(t *testing.T) {
		e := &model.Event{ID: "e1", Type: model.TypePlay, DateKey: "2026-03-10", Activity: ""}
		if warnings := nido.Validate(e); len(warnings) != 0 {
			t.Errorf("Validate() = %v, want no warnings", warnings)
		}
	})
}
