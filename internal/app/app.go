package app

import (
	"fmt"
	"os"
	"time"

	"nido-go/internal/config"
	"nido-go/internal/database"
	"nido-go/internal/encryption"
	"nido-go/internal/export"
	"nido-go/internal/model"
	"nido-go/internal/nido"
)

// App is the application layer between the CLI and the Service.
// It constructs all dependencies from config, exposes the high-level
// operations the commands need, and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   nido.Store
	service *nido.Service
	op      *Operation
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "LogEvent", "Export").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	// The first configured export destination is the active one.
	// A config without destinations is fine for commands that never export.
	var exporter nido.Exporter
	if len(cfg.Exports) > 0 {
		exporter, err = export.NewExporterFromConfig(cfg.Exports[0])
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("creating exporter: %w", err)
		}
	}

	encryptor, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := nido.NewService(store, exporter, encryptor, &slogAdapter{l: logger}, nido.RealClock{}, nido.UUIDGenerator{})

	return &App{
		cfg:     cfg,
		store:   store,
		service: svc,
		op:      NewOperation(operation, ""),
		logFile: logFile,
	}, nil
}

// persistOperation saves the operation to the database, giving it an
// auto-increment ID. Called only by mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	dbOp, err := a.store.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// ValidateEvent runs the pre-write sanity checks for the CLI confirmation flow.
func (a *App) ValidateEvent(e *model.Event) []nido.Warning {
	return a.service.ValidateEvent(e)
}

// LogEvent stores a new event, assigning an ID and default date key as needed.
func (a *App) LogEvent(e *model.Event) (*model.Event, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service.LogEvent(e)
}

// GetEvent returns the event with the given ID.
func (a *App) GetEvent(id string) (*model.Event, error) {
	return a.service.GetEvent(id)
}

// UpdateEvent fully replaces the stored event with the same ID.
func (a *App) UpdateEvent(e *model.Event) (*model.Event, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service.UpdateEvent(e)
}

// DeleteEvent removes an event. Absent IDs are a no-op.
func (a *App) DeleteEvent(id string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	return a.service.DeleteEvent(id)
}

// Day returns the events filed under dateKey and their derived summary.
func (a *App) Day(dateKey string) ([]*model.Event, model.DailySummary, error) {
	return a.service.Day(dateKey)
}

// Export writes the full event log as CSV to the configured destination.
// Returns the number of exported events.
func (a *App) Export(name string, encrypt bool) (int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	return a.service.ExportCSV(name, encrypt)
}

// History returns the most recent mutating operations, newest first.
func (a *App) History(limit int) ([]*model.Operation, error) {
	return a.service.History(limit)
}

// Fail marks the current operation as failed; Close records the status.
func (a *App) Fail() {
	a.op.Fail()
}

// Close finalizes the operation record (when persisted) and closes all resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.store.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.store.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing store: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
