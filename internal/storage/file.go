package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"tyreadvisor/internal/model"
)

// NewFile creates a Store backed by a pretty-printed JSON file. A missing
// file initialises an empty database on first load.
func NewFile(path string) Store {
	return newBlobStore(&fileBlob{path: path})
}

type fileBlob struct {
	path string
}

func (f *fileBlob) load(context.Context) (*model.Database, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &model.Database{LastSync: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read database file: %w", err)
	}

	var db model.Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("decode database file: %w", err)
	}
	return &db, nil
}

func (f *fileBlob) save(_ context.Context, db *model.Database) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}

	// Write-then-rename keeps a crash from truncating the database.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write database file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace database file: %w", err)
	}
	return nil
}

func (f *fileBlob) close() error { return nil }
