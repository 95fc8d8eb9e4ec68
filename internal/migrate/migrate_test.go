package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/followup/internal/models"
	"github.com/starford/followup/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTaskIDs_RewritesLegacyIDs(t *testing.T) {
	db := &models.Database{Projects: []models.Project{
		{ID: "3", Tasks: []models.Task{{ID: "5"}, {ID: "3-6"}}},
		{ID: "4", Tasks: []models.Task{{ID: "5"}}},
	}}

	require.Equal(t, 2, TaskIDs(db))
	require.Equal(t, "3-5", db.Projects[0].Tasks[0].ID)
	require.Equal(t, "3-6", db.Projects[0].Tasks[1].ID)
	require.Equal(t, "4-5", db.Projects[1].Tasks[0].ID)
}

func TestTaskIDs_Idempotent(t *testing.T) {
	db := &models.Database{Projects: []models.Project{
		{ID: "3", Tasks: []models.Task{{ID: "5"}}},
	}}
	require.Equal(t, 1, TaskIDs(db))
	require.Equal(t, 0, TaskIDs(db))
	require.Equal(t, "3-5", db.Projects[0].Tasks[0].ID)
}

func TestRun_SavesOnlyWhenChanged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryRaw([]byte(`{"projects":[{"id":"3","name":"x","tasks":[{"id":"5","title":"t","status":"To Do"}]}]}`))

	res := Run(ctx, store, discardLogger())
	require.NoError(t, res.Err)
	require.Equal(t, 1, res.Rewritten)
	require.True(t, res.Saved)
	require.Equal(t, 1, store.Saves())

	db, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "3-5", db.Projects[0].Tasks[0].ID)
	require.Equal(t, 4, db.NextID)

	res = Run(ctx, store, discardLogger())
	require.NoError(t, res.Err)
	require.Zero(t, res.Rewritten)
	require.False(t, res.Saved)
	require.Equal(t, 1, store.Saves())
}

type failingStore struct {
	loadErr error
	saveErr error
	db      *models.Database
}

func (f *failingStore) Load(context.Context) (*models.Database, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.db, nil
}

func (f *failingStore) Save(context.Context, *models.Database) error {
	return f.saveErr
}

func TestRun_SwallowsLoadError(t *testing.T) {
	boom := errors.New("disk on fire")
	res := Run(context.Background(), &failingStore{loadErr: boom}, discardLogger())
	require.ErrorIs(t, res.Err, boom)
	require.False(t, res.Saved)
}

func TestRun_SwallowsSaveError(t *testing.T) {
	boom := errors.New("read-only")
	store := &failingStore{
		saveErr: boom,
		db:      &models.Database{Projects: []models.Project{{ID: "1", Tasks: []models.Task{{ID: "1"}}}}},
	}
	res := Run(context.Background(), store, discardLogger())
	require.ErrorIs(t, res.Err, boom)
	require.Equal(t, 1, res.Rewritten)
	require.False(t, res.Saved)
}

func TestRun_RecoversPanic(t *testing.T) {
	// A nil database from Load makes the pass dereference nil.
	res := Run(context.Background(), &failingStore{}, discardLogger())
	require.Error(t, res.Err)
}
