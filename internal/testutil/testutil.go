// Package testutil provides shared test helpers for setting up data files and journals.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/followup/internal/activity"
	"github.com/starford/followup/internal/storage"
)

// TestJournal creates a temporary activity journal that is automatically cleaned up.
func TestJournal(t *testing.T) *activity.Journal {
	t.Helper()
	dbFile, err := os.CreateTemp("", "followup-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	j, err := activity.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// TestStore creates an initialised JSON data file in a temporary directory.
func TestStore(t *testing.T) (string, *storage.JSONFile) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "projects.json")
	store, err := storage.NewJSONFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return path, store
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
