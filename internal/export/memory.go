package export

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"nido-go/internal/nido"
)

// MemoryExporter is an in-memory implementation of the Exporter interface,
// useful for testing. It is safe for concurrent use.
type MemoryExporter struct {
	name     string
	payloads map[string][]byte
	mu       sync.RWMutex
}

// NewMemoryExporter creates a new in-memory exporter with the given name.
func NewMemoryExporter(name string) *MemoryExporter {
	return &MemoryExporter{
		name:     name,
		payloads: make(map[string][]byte),
	}
}

// Put stores a payload under the given name, replacing any previous one.
func (m *MemoryExporter) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.payloads[name] = data
	return nil
}

// Get retrieves a stored payload and writes it to w.
func (m *MemoryExporter) Get(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.payloads[name]
	if !ok {
		return fmt.Errorf("payload not found: %s", name)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	return nil
}

// Names returns the names of all stored payloads.
func (m *MemoryExporter) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.payloads))
	for name := range m.payloads {
		names = append(names, name)
	}
	return names
}

// ValidateSetup always succeeds for the in-memory exporter.
func (m *MemoryExporter) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryExporter implements the nido.Exporter interface.
var _ nido.Exporter = (*MemoryExporter)(nil)
