package projectservice

import (
	"context"
	"time"
)

// Event kinds emitted after a successful save.
const (
	EventProjectCreated = "project.created"
	EventProjectUpdated = "project.updated"
	EventProjectDeleted = "project.deleted"
	EventTaskCreated    = "task.created"
	EventTaskUpdated    = "task.updated"
	EventTaskDeleted    = "task.deleted"
	EventMeetingUpdated = "meeting.updated"
	EventMeetingDeleted = "meeting.deleted"
)

// Event describes a persisted change.
type Event struct {
	Kind      string
	ProjectID string
	TaskID    string
	Detail    string
	At        time.Time
}

// Listener observes persisted changes. Implementations must not block for
// long; they run on the request goroutine.
type Listener interface {
	OnChange(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev Event)

// OnChange calls f(ctx, ev).
func (f ListenerFunc) OnChange(ctx context.Context, ev Event) {
	f(ctx, ev)
}
