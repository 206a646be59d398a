package nido

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"nido-go/internal/model"
)

// csvHeader is the fixed export column order. Changing it breaks downstream
// spreadsheets, so treat it as a wire format.
var csvHeader = []string{
	"id", "type", "dateKey", "start", "end",
	"mode", "side", "volume", "activity", "bathNotes", "notes",
}

// WriteCSV writes events to w as CSV, one row per event, preceded by a
// header row. Absent fields render as empty strings; timestamps render as
// RFC 3339. Quoting follows the standard CSV rules (encoding/csv), so a
// standard parser round-trips every field exactly, commas and quotes
// included. Row order is the caller's slice order.
func WriteCSV(w io.Writer, events []*model.Event) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, raw := range events {
		e := raw.Normalized()
		if err := cw.Write(csvRecord(e)); err != nil {
			return fmt.Errorf("writing csv row for event %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// csvRecord renders a normalized event as one CSV record in header order.
func csvRecord(e *model.Event) []string {
	var mode, side, volume string
	if e.Feeding != nil {
		mode = string(e.Feeding.Mode)
		side = string(e.Feeding.Side)
		if e.Feeding.Mode == model.ModeBottle || e.Feeding.Mode == model.ModeSyringe {
			volume = strconv.FormatFloat(e.Feeding.VolumeML, 'f', -1, 64)
		}
	}

	return []string{
		e.ID,
		string(e.Type),
		e.DateKey,
		formatInstant(e.Start),
		formatInstant(e.End),
		mode,
		side,
		volume,
		e.Activity,
		e.BathNotes,
		e.Notes,
	}
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
