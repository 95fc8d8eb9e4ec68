// Package migrate rewrites legacy task ids into the composite
// "{projectID}-{taskID}" form.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/followup/internal/models"
	"github.com/starford/followup/internal/storage"
)

// Result describes one migration pass. Err is set when the pass failed; the
// failure is never returned as an error so that startup can carry on with
// un-migrated ids.
type Result struct {
	Rewritten int
	Saved     bool
	Err       error
}

// TaskIDs rewrites every task id without a separator in place and returns
// the number of rewritten ids. Already composite ids are left alone, so
// applying it twice is a no-op.
func TaskIDs(db *models.Database) int {
	n := 0
	for i := range db.Projects {
		p := &db.Projects[i]
		for j := range p.Tasks {
			if models.IsCompositeTaskID(p.Tasks[j].ID) {
				continue
			}
			p.Tasks[j].ID = models.ComposeTaskID(p.ID, p.Tasks[j].ID)
			n++
		}
	}
	return n
}

// Run loads the database, migrates task ids, and saves only when something
// changed. Panics inside the pass are recovered into Result.Err.
func Run(ctx context.Context, store storage.Provider, logger *slog.Logger) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("migrate: panic: %v", r)
		}
		if res.Err != nil {
			logger.Error("task id migration failed", slog.String("error", res.Err.Error()))
		}
	}()

	db, err := store.Load(ctx)
	if err != nil {
		res.Err = fmt.Errorf("migrate: load: %w", err)
		return res
	}

	res.Rewritten = TaskIDs(db)
	if res.Rewritten == 0 {
		logger.Debug("task ids already migrated")
		return res
	}

	if err := store.Save(ctx, db); err != nil {
		res.Err = fmt.Errorf("migrate: save: %w", err)
		return res
	}
	res.Saved = true
	logger.Info("task ids migrated to composite form", slog.Int("rewritten", res.Rewritten))
	return res
}
