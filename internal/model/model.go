package model

import "time"

// DateKeyLayout is the time.Format layout for date keys ("2026-08-31").
const DateKeyLayout = "2006-01-02"

// Type classifies an event. Unknown values may appear in old databases and
// are tolerated by readers (ignored by aggregation).
type Type string

const (
	TypeFeeding Type = "feeding"
	TypeSleep   Type = "sleep"
	TypePlay    Type = "play"
	TypeBath    Type = "bath"
)

// Valid reports whether t is one of the known event types.
func (t Type) Valid() bool {
	switch t {
	case TypeFeeding, TypeSleep, TypePlay, TypeBath:
		return true
	}
	return false
}

// Mode sub-classifies a feeding event.
type Mode string

const (
	ModeBreast  Mode = "breast"
	ModeBottle  Mode = "bottle"
	ModeSyringe Mode = "syringe"
)

// Valid reports whether m is one of the known feeding modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeBreast, ModeBottle, ModeSyringe:
		return true
	}
	return false
}

// Side records which breast was used for a breast feeding.
// The empty value means unset.
type Side string

const (
	SideUnset Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether s is left, right, or unset.
func (s Side) Valid() bool {
	switch s {
	case SideUnset, SideLeft, SideRight:
		return true
	}
	return false
}

// Feeding holds the detail fields that only apply to feeding events.
// Side only applies when Mode is breast; VolumeML only applies when Mode is
// bottle or syringe.
type Feeding struct {
	Mode     Mode
	Side     Side
	VolumeML float64 // milliliters
}

// Event is one logged infant-care occurrence.
//
// DateKey is the calendar date the event is filed under and is the query
// partition. It is user-editable and independent of Start's calendar date.
//
// The detail fields form a tagged variant keyed on Type: Feeding is set only
// for feeding events, Activity only for play, BathNotes only for bath.
// Normalized clears anything that doesn't match the Type/Mode combination.
type Event struct {
	ID      string // UUID, assigned on first store
	Type    Type
	DateKey string // "2006-01-02", local date
	Start   *time.Time
	End     *time.Time

	Feeding   *Feeding // Type == feeding only
	Activity  string   // Type == play only
	BathNotes string   // Type == bath only
	Notes     string   // any type
}

// Duration returns End-Start. It returns zero when either endpoint is absent,
// and clamps reversed intervals (End before Start) to zero so totals built
// from it can never go negative.
func (e *Event) Duration() time.Duration {
	if e.Start == nil || e.End == nil {
		return 0
	}
	d := e.End.Sub(*e.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Normalized returns a copy of e with every detail field that is not
// applicable to its Type/Mode combination cleared. Consumers of normalized
// events never have to guess whether a stray value is meaningful.
func (e *Event) Normalized() *Event {
	n := *e

	switch n.Type {
	case TypeFeeding:
		if n.Feeding != nil {
			f := *n.Feeding
			switch f.Mode {
			case ModeBreast:
				f.VolumeML = 0
			case ModeBottle, ModeSyringe:
				f.Side = SideUnset
				if f.VolumeML < 0 {
					f.VolumeML = 0
				}
			default:
				f.Side = SideUnset
				f.VolumeML = 0
			}
			n.Feeding = &f
		}
		n.Activity = ""
		n.BathNotes = ""
	case TypePlay:
		n.Feeding = nil
		n.BathNotes = ""
	case TypeBath:
		n.Feeding = nil
		n.Activity = ""
	default:
		n.Feeding = nil
		n.Activity = ""
		n.BathNotes = ""
	}

	return &n
}

// DailySummary is the derived aggregate of one day's events. It is never
// persisted; it is recomputed from the current event set on every query.
type DailySummary struct {
	BreastDuration   time.Duration // feeding, mode=breast
	BreastLeftCount  int
	BreastRightCount int
	BottleVolumeML   float64 // feeding, mode=bottle or syringe
	SleepDuration    time.Duration
	PlayDuration     time.Duration
	BathCount        int
}

// IsZero reports whether the summary has no accumulated data.
func (s DailySummary) IsZero() bool {
	return s == DailySummary{}
}

// Operation tracks one mutating CLI invocation, for `nido history`.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt *time.Time // nil until finished
	Status     string     // "success" or "error"
}
