package nido

import "nido-go/internal/model"

// WarningCode identifies a validation warning.
type WarningCode string

const (
	// WarnReversedInterval means end precedes start.
	WarnReversedInterval WarningCode = "reversed_interval"
	// WarnMissingSide means a breast feeding has no side recorded.
	WarnMissingSide WarningCode = "missing_side"
)

// Warning is a non-fatal validation finding. The caller decides whether to
// ask the user for confirmation before writing; proceeding is always allowed.
type Warning struct {
	Code    WarningCode
	Message string
}

// Validate applies the pre-write sanity checks to an event and returns any
// warnings. It never rejects: free-text fields accept anything including
// empty, and the two checks below are UX nudges, not constraints.
func Validate(e *model.Event) []Warning {
	var warnings []Warning

	if e.Start != nil && e.End != nil && e.End.Before(*e.Start) {
		warnings = append(warnings, Warning{
			Code:    WarnReversedInterval,
			Message: "end time is before start time",
		})
	}

	if e.Type == model.TypeFeeding && e.Feeding != nil &&
		e.Feeding.Mode == model.ModeBreast && e.Feeding.Side == model.SideUnset {
		warnings = append(warnings, Warning{
			Code:    WarnMissingSide,
			Message: "breast feeding has no side recorded",
		})
	}

	return warnings
}
