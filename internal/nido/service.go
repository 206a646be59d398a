package nido

import (
	"bytes"
	"fmt"

	"nido-go/internal/model"
)

// Service is the orchestration layer that coordinates the store, exporter,
// and encryptor to perform the high-level operations needed by the CLI.
// It holds no state of its own; every read recomputes from the store.
type Service struct {
	store     Store
	exporter  Exporter
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewService creates a new Service with the provided dependencies.
// exporter and encryptor may be nil for commands that never export.
func NewService(store Store, exporter Exporter, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:     store,
		exporter:  exporter,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// ValidateEvent runs the pre-write sanity checks. The caller is expected to
// surface any warnings to the user for confirmation before calling LogEvent
// or UpdateEvent; writing anyway is allowed.
func (s *Service) ValidateEvent(e *model.Event) []Warning {
	return Validate(e)
}

// LogEvent stores a new event. A fresh ID is assigned when none is supplied,
// and an empty DateKey defaults to Start's local date (or today when the
// event has no start). The event is normalized before the write so fields
// that don't apply to its type never reach the store.
func (s *Service) LogEvent(e *model.Event) (*model.Event, error) {
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type: %q", e.Type)
	}

	n := e.Normalized()
	if n.ID == "" {
		n.ID = s.idgen.New()
	}
	if n.DateKey == "" {
		if n.Start != nil {
			n.DateKey = n.Start.Format(model.DateKeyLayout)
		} else {
			n.DateKey = s.clock.Now().Format(model.DateKeyLayout)
		}
	}

	stored, err := s.store.PutEvent(n)
	if err != nil {
		return nil, fmt.Errorf("storing event: %w", err)
	}

	s.logger.Info("event logged", "id", stored.ID, "type", stored.Type, "date", stored.DateKey)
	return stored, nil
}

// GetEvent returns the event with the given ID.
func (s *Service) GetEvent(id string) (*model.Event, error) {
	e, err := s.store.FindEventByID(id)
	if err != nil {
		return nil, fmt.Errorf("finding event: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("no such event: %s", id)
	}
	return e, nil
}

// UpdateEvent fully replaces the stored event with the same ID.
// The event must already exist; use LogEvent for new events.
func (s *Service) UpdateEvent(e *model.Event) (*model.Event, error) {
	if e.ID == "" {
		return nil, fmt.Errorf("event has no id")
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type: %q", e.Type)
	}

	existing, err := s.store.FindEventByID(e.ID)
	if err != nil {
		return nil, fmt.Errorf("finding event: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("no such event: %s", e.ID)
	}

	n := e.Normalized()
	if n.DateKey == "" {
		n.DateKey = existing.DateKey
	}

	stored, err := s.store.PutEvent(n)
	if err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}

	s.logger.Info("event updated", "id", stored.ID, "type", stored.Type)
	return stored, nil
}

// DeleteEvent removes the event with the given ID.
// Deleting a nonexistent ID is a no-op.
func (s *Service) DeleteEvent(id string) error {
	if err := s.store.DeleteEvent(id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	s.logger.Info("event deleted", "id", id)
	return nil
}

// Day loads the events filed under dateKey (start ascending, undated first)
// and their derived summary.
func (s *Service) Day(dateKey string) ([]*model.Event, model.DailySummary, error) {
	events, err := s.store.FindEventsByDate(dateKey)
	if err != nil {
		return nil, model.DailySummary{}, fmt.Errorf("loading events: %w", err)
	}
	return events, Summarize(events), nil
}

// ExportCSV writes the full event log as CSV to the configured exporter
// under the given name. When encrypt is true the payload is age-encrypted
// first. Returns the number of exported events.
func (s *Service) ExportCSV(name string, encrypt bool) (int, error) {
	if s.exporter == nil {
		return 0, fmt.Errorf("no export destination configured")
	}

	events, err := s.store.FindAllEvents()
	if err != nil {
		return 0, fmt.Errorf("loading events: %w", err)
	}

	var payload bytes.Buffer
	if err := WriteCSV(&payload, events); err != nil {
		return 0, fmt.Errorf("building csv: %w", err)
	}

	if encrypt {
		if s.encryptor == nil || !s.encryptor.IsConfigured() {
			return 0, fmt.Errorf("encryption requested but no keys configured (run `nido config keys init`)")
		}
		var sealed bytes.Buffer
		if err := s.encryptor.Encrypt(&payload, &sealed); err != nil {
			return 0, fmt.Errorf("encrypting export: %w", err)
		}
		payload = sealed
	}

	size := int64(payload.Len())
	if err := s.exporter.Put(name, &payload, size); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}

	s.logger.Info("export complete", "name", name, "events", len(events), "bytes", size, "encrypted", encrypt)
	return len(events), nil
}

// History returns the most recent mutating operations, newest first.
func (s *Service) History(limit int) ([]*model.Operation, error) {
	ops, err := s.store.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
