package nido

import "nido-go/internal/model"

// Summarize reduces a set of events into a DailySummary. It is a pure
// function of the input contents: order does not matter, and the result is
// recomputed on every call rather than cached anywhere.
//
// Events are normalized first, so fields that don't apply to an event's
// type/mode combination never leak into the totals. Reversed intervals
// contribute zero duration (see Event.Duration). Unknown event types are
// skipped so databases written by newer versions still summarize.
//
// Feeding duration is only accumulated for breast mode. Bottle and syringe
// feeds are measured by volume, not time; that asymmetry is deliberate.
func Summarize(events []*model.Event) model.DailySummary {
	var s model.DailySummary

	for _, raw := range events {
		e := raw.Normalized()
		d := e.Duration()

		switch e.Type {
		case model.TypeFeeding:
			if e.Feeding == nil {
				continue
			}
			switch e.Feeding.Mode {
			case model.ModeBreast:
				s.BreastDuration += d
				switch e.Feeding.Side {
				case model.SideLeft:
					s.BreastLeftCount++
				case model.SideRight:
					s.BreastRightCount++
				}
			case model.ModeBottle, model.ModeSyringe:
				s.BottleVolumeML += e.Feeding.VolumeML
			}
		case model.TypeSleep:
			s.SleepDuration += d
		case model.TypePlay:
			s.PlayDuration += d
		case model.TypeBath:
			s.BathCount++
		}
	}

	return s
}
