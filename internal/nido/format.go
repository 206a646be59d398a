package nido

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nido-go/internal/model"
)

// FormatDuration renders a duration for display: "0m", "45m", "1h 30m".
// Sub-minute precision is dropped; nobody logs a 20-second nap.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatVolume renders milliliters for display, trimming trailing zeros.
func FormatVolume(ml float64) string {
	return strconv.FormatFloat(ml, 'f', -1, 64) + " ml"
}

// FormatSummary renders a DailySummary as display lines, one per category.
func FormatSummary(s model.DailySummary) []string {
	return []string{
		fmt.Sprintf("Breast: %s (L:%d R:%d)", FormatDuration(s.BreastDuration), s.BreastLeftCount, s.BreastRightCount),
		fmt.Sprintf("Bottle: %s", FormatVolume(s.BottleVolumeML)),
		fmt.Sprintf("Sleep:  %s", FormatDuration(s.SleepDuration)),
		fmt.Sprintf("Play:   %s", FormatDuration(s.PlayDuration)),
		fmt.Sprintf("Baths:  %d", s.BathCount),
	}
}

// FormatEvent renders one event as a single display line.
func FormatEvent(e *model.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-8s", e.Type)
	fmt.Fprintf(&b, "  %s - %s", formatClock(e.Start), formatClock(e.End))

	if e.Feeding != nil {
		fmt.Fprintf(&b, "  %s", e.Feeding.Mode)
		if e.Feeding.Side != model.SideUnset {
			fmt.Fprintf(&b, " (%s)", e.Feeding.Side)
		}
		if e.Feeding.Mode == model.ModeBottle || e.Feeding.Mode == model.ModeSyringe {
			fmt.Fprintf(&b, " %s", FormatVolume(e.Feeding.VolumeML))
		}
	}
	if e.Activity != "" {
		fmt.Fprintf(&b, "  %s", e.Activity)
	}
	if e.BathNotes != "" {
		fmt.Fprintf(&b, "  %s", e.BathNotes)
	}
	if e.Notes != "" {
		fmt.Fprintf(&b, "  [%s]", e.Notes)
	}

	return b.String()
}

// formatClock renders the wall-clock part of an instant, or "--:--" when
// the instant is absent.
func formatClock(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Format("15:04")
}
