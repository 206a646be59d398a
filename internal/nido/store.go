package nido

import (
	"fmt"

	"nido-go/internal/model"
)

// Store provides an interface for event persistence.
// Each method is a self-contained atomic unit; callers never need
// transactions spanning multiple calls.
type Store interface {
	// PutEvent inserts or fully replaces the event with the given ID.
	// The event must already carry an ID; the service layer assigns one
	// before the first write. Returns the stored event.
	PutEvent(event *model.Event) (*model.Event, error)

	// FindEventByID returns the event with the given ID, or nil when absent.
	FindEventByID(id string) (*model.Event, error)

	// FindEventsByDate returns all events filed under the given date key,
	// ordered by start ascending. Events with an absent start sort first.
	FindEventsByDate(dateKey string) ([]*model.Event, error)

	// FindAllEvents returns every event across all dates, same ordering
	// rule as FindEventsByDate.
	FindAllEvents() ([]*model.Event, error)

	// DeleteEvent removes the event with the given ID.
	// Deleting a nonexistent ID is a no-op, not an error.
	DeleteEvent(id string) error

	// Operation log

	// CreateOperation records the start of a mutating CLI invocation.
	CreateOperation(operation, parameters string) (*model.Operation, error)

	// FinishOperation marks an operation finished with the given status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*model.Operation, error)

	// Close closes the underlying store.
	Close() error
}

// StorageError wraps a failure of the underlying persistence layer.
// It is propagated to the caller as-is; there is no automatic retry.
type StorageError struct {
	Op  string // the store operation that failed, e.g. "put event"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
