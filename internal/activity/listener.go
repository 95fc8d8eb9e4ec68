package activity

import (
	"context"
	"log/slog"

	"github.com/starford/followup/internal/projectservice"
)

// Listener returns a projectservice listener that journals every change.
// Insert failures are logged and otherwise ignored.
func (j *Journal) Listener(logger *slog.Logger) projectservice.Listener {
	return projectservice.ListenerFunc(func(ctx context.Context, ev projectservice.Event) {
		err := j.Record(ctx, Entry{
			At:        ev.At,
			Kind:      ev.Kind,
			ProjectID: ev.ProjectID,
			TaskID:    ev.TaskID,
			Detail:    ev.Detail,
		})
		if err != nil {
			logger.Warn("activity: record failed", slog.String("kind", ev.Kind), slog.String("error", err.Error()))
		}
	})
}
