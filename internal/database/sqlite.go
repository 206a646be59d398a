package database

import (
	"database/sql"
	"fmt"
	"time"

	"nido-go/internal/database/migrations"
	"nido-go/internal/model"
	"nido-go/internal/nido"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the nido.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path and
// migrates it to the latest schema version. path can be a file path or
// ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// this tool relies on. Exported for tools and tests that need a raw handle.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

const eventColumns = "id, type, date_key, start_at, end_at, mode, side, volume_ml, activity, bath_notes, notes"

// Event operations

// PutEvent inserts or fully replaces the event with the given ID.
func (s *SQLiteStore) PutEvent(event *model.Event) (*model.Event, error) {
	if event.ID == "" {
		return nil, &nido.StorageError{Op: "put event", Err: fmt.Errorf("event has no id")}
	}

	var mode, side string
	var volume sql.NullFloat64
	if event.Feeding != nil {
		mode = string(event.Feeding.Mode)
		side = string(event.Feeding.Side)
		if event.Feeding.Mode == model.ModeBottle || event.Feeding.Mode == model.ModeSyringe {
			volume = sql.NullFloat64{Float64: event.Feeding.VolumeML, Valid: true}
		}
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), event.DateKey,
		nullInstant(event.Start), nullInstant(event.End),
		mode, side, volume,
		event.Activity, event.BathNotes, event.Notes,
	)
	if err != nil {
		return nil, &nido.StorageError{Op: "put event", Err: err}
	}

	return event, nil
}

// FindEventByID returns the event with the given ID, or nil when absent.
func (s *SQLiteStore) FindEventByID(id string) (*model.Event, error) {
	row := s.db.QueryRow(
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id,
	)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &nido.StorageError{Op: "find event by id", Err: err}
	}
	return event, nil
}

// FindEventsByDate returns the events filed under dateKey, ordered by start
// ascending. SQLite sorts NULLs first in ascending order, which gives the
// required "undated sorts first" behavior for free.
func (s *SQLiteStore) FindEventsByDate(dateKey string) ([]*model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColumns+` FROM events
		 WHERE date_key = ?
		 ORDER BY start_at ASC, id ASC`, dateKey,
	)
	if err != nil {
		return nil, &nido.StorageError{Op: "find events by date", Err: err}
	}
	return collectEvents(rows, "find events by date")
}

// FindAllEvents returns every event across all dates, chronological by start
// with undated events first.
func (s *SQLiteStore) FindAllEvents() ([]*model.Event, error) {
	rows, err := s.db.Query(
		`SELECT ` + eventColumns + ` FROM events
		 ORDER BY start_at ASC, date_key ASC, id ASC`,
	)
	if err != nil {
		return nil, &nido.StorageError{Op: "find all events", Err: err}
	}
	return collectEvents(rows, "find all events")
}

// DeleteEvent removes the event with the given ID. Absent IDs are a no-op.
func (s *SQLiteStore) DeleteEvent(id string) error {
	if _, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id); err != nil {
		return &nido.StorageError{Op: "delete event", Err: err}
	}
	return nil
}

// Operation log

// CreateOperation records the start of a mutating CLI invocation.
func (s *SQLiteStore) CreateOperation(operation, parameters string) (*model.Operation, error) {
	startedAt := time.Now()
	res, err := s.db.Exec(
		`INSERT INTO operations (operation, parameters, started_at, status)
		 VALUES (?, ?, ?, '')`,
		operation, parameters, startedAt,
	)
	if err != nil {
		return nil, &nido.StorageError{Op: "create operation", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, &nido.StorageError{Op: "create operation", Err: err}
	}

	return &model.Operation{
		ID:         id,
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  startedAt,
	}, nil
}

// FinishOperation marks an operation finished with the given status.
func (s *SQLiteStore) FinishOperation(id int64, status string) error {
	_, err := s.db.Exec(
		`UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`,
		time.Now(), status, id,
	)
	if err != nil {
		return &nido.StorageError{Op: "finish operation", Err: err}
	}
	return nil
}

// ListOperations returns the most recent operations, newest first.
func (s *SQLiteStore) ListOperations(limit int) ([]*model.Operation, error) {
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, started_at, finished_at, status
		 FROM operations ORDER BY id DESC LIMIT ?`, int64(limit),
	)
	if err != nil {
		return nil, &nido.StorageError{Op: "list operations", Err: err}
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		var op model.Operation
		var finishedAt sql.NullTime
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &finishedAt, &op.Status); err != nil {
			return nil, &nido.StorageError{Op: "list operations", Err: err}
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, &nido.StorageError{Op: "list operations", Err: err}
	}

	return ops, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Row mapping

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent maps one events row onto a model.Event. Detail columns are only
// attached when they apply to the row's type, so rows written by older or
// newer versions still come back clean.
func scanEvent(r rowScanner) (*model.Event, error) {
	var (
		e            model.Event
		typ          string
		start, end   sql.NullTime
		mode, side   string
		volume       sql.NullFloat64
	)

	err := r.Scan(&e.ID, &typ, &e.DateKey, &start, &end, &mode, &side, &volume, &e.Activity, &e.BathNotes, &e.Notes)
	if err != nil {
		return nil, err
	}

	e.Type = model.Type(typ)
	if start.Valid {
		t := start.Time
		e.Start = &t
	}
	if end.Valid {
		t := end.Time
		e.End = &t
	}
	if e.Type == model.TypeFeeding {
		e.Feeding = &model.Feeding{
			Mode:     model.Mode(mode),
			Side:     model.Side(side),
			VolumeML: volume.Float64,
		}
	}

	return &e, nil
}

// collectEvents drains rows into a slice, closing rows either way.
func collectEvents(rows *sql.Rows, op string) ([]*model.Event, error) {
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, &nido.StorageError{Op: op, Err: err}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &nido.StorageError{Op: op, Err: err}
	}

	return events, nil
}

func nullInstant(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Compile-time check that SQLiteStore implements the nido.Store interface.
var _ nido.Store = (*SQLiteStore)(nil)
