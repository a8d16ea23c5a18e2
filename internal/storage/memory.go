package storage

import (
	"context"
	"encoding/json"
	"time"

	"tyreadvisor/internal/model"
)

// NewMemory creates a Store that lives entirely in process memory.
// Useful for tests and as a cache-only deployment mode.
func NewMemory() Store {
	return newBlobStore(&memoryBlob{
		db: &model.Database{LastSync: time.Now().UTC()},
	})
}

type memoryBlob struct {
	db *model.Database
}

// load returns a deep copy so callers cannot mutate the stored snapshot
// outside the store lock.
func (m *memoryBlob) load(context.Context) (*model.Database, error) {
	return cloneDatabase(m.db)
}

func (m *memoryBlob) save(_ context.Context, db *model.Database) error {
	cp, err := cloneDatabase(db)
	if err != nil {
		return err
	}
	m.db = cp
	return nil
}

func (m *memoryBlob) close() error { return nil }

func cloneDatabase(db *model.Database) (*model.Database, error) {
	data, err := json.Marshal(db)
	if err != nil {
		return nil, err
	}
	var cp model.Database
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
