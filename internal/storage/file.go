package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/followup/internal/checksum"
	"github.com/starford/followup/internal/models"
)

// JSONFile implements Provider backed by a single JSON file.
type JSONFile struct {
	path string // absolute path to the data file

	mu       sync.Mutex
	lastSave string // checksum of the bytes most recently written by Save
}

// NewJSONFile creates a provider for the file at path. The file itself is
// created by Init.
func NewJSONFile(path string) (*JSONFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	return &JSONFile{path: abs}, nil
}

// Path returns the absolute location of the data file.
func (f *JSONFile) Path() string {
	return f.path
}

// Init makes sure the data file exists, writing an empty database when it
// does not. existed reports whether a file was already there, which is what
// decides whether legacy migration should run.
func (f *JSONFile) Init(ctx context.Context) (existed bool, err error) {
	info, err := os.Stat(f.path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false, fmt.Errorf("storage: data path is a directory: %s", f.path)
		}
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return false, fmt.Errorf("storage: mkdir: %w", err)
		}
		return false, f.Save(ctx, models.NewDatabase())
	default:
		return false, fmt.Errorf("storage: stat %s: %w", f.path, err)
	}
}

// Load reads and decodes the data file.
func (f *JSONFile) Load(_ context.Context) (*models.Database, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return Decode(data)
}

// Save atomically replaces the data file: tmp file → fsync → rename.
func (f *JSONFile) Save(_ context.Context, db *models.Database) error {
	content, err := Encode(db)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)

	tmp, err := os.CreateTemp(dir, ".followup-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	f.lastSave = checksum.Sum(content)
	return nil
}

// LastSaved returns the checksum of the last document written by this
// process, empty before the first Save.
func (f *JSONFile) LastSaved() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSave
}

// Verify *JSONFile satisfies Provider at compile time.
var _ Provider = (*JSONFile)(nil)
