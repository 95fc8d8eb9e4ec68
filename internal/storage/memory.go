package storage

import (
	"context"
	"sync"

	"github.com/starford/followup/internal/models"
)

// Memory is an in-process Provider. It stores the encoded document so every
// Load hands out an independent copy, exactly like the file provider.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemory returns a Memory seeded with db, or with an empty database when db is nil.
func NewMemory(db *models.Database) *Memory {
	if db == nil {
		db = models.NewDatabase()
	}
	data, err := Encode(db)
	if err != nil {
		panic(err)
	}
	return &Memory{data: data}
}

// NewMemoryRaw seeds the store with an already encoded document, e.g. a legacy file.
func NewMemoryRaw(raw []byte) *Memory {
	return &Memory{data: raw}
}

// Load decodes the stored document.
func (m *Memory) Load(_ context.Context) (*models.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Decode(m.data)
}

// Save replaces the stored document.
func (m *Memory) Save(_ context.Context, db *models.Database) error {
	data, err := Encode(db)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the stored bytes.
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

var _ Provider = (*Memory)(nil)
