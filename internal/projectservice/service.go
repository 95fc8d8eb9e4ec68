// Package projectservice implements every project, task and meeting-note
// operation as a load-mutate-save cycle against a storage.Provider.
package projectservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/followup/internal/apperr"
	"github.com/starford/followup/internal/models"
	"github.com/starford/followup/internal/storage"
)

// Service coordinates storage access and change notifications.
type Service struct {
	store     storage.Provider
	now       func() time.Time
	logger    *slog.Logger
	listeners []Listener
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for statusDate stamping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithListener registers a listener notified after every successful save.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, l)
	}
}

// NewService creates a new project service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Database returns the full document. When owner is non-empty only that
// owner's projects are included.
func (s *Service) Database(ctx context.Context, owner string) (*models.Database, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		return db, nil
	}
	filtered := make([]models.Project, 0, len(db.Projects))
	for _, p := range db.Projects {
		if p.Owner == owner {
			filtered = append(filtered, p)
		}
	}
	db.Projects = filtered
	return db, nil
}

// Owners returns the sorted distinct non-empty project owners.
func (s *Service) Owners(ctx context.Context) ([]string, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	owners := []string{}
	for _, p := range db.Projects {
		if p.Owner == "" {
			continue
		}
		if _, ok := seen[p.Owner]; ok {
			continue
		}
		seen[p.Owner] = struct{}{}
		owners = append(owners, p.Owner)
	}
	sort.Strings(owners)
	return owners, nil
}

// CreateProject appends a new project with the next id from the counter.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	p := models.Project{
		ID:       db.AllocateProjectID(),
		Name:     in.Name,
		Owner:    valueOr(in.Owner, models.DefaultOwner),
		Status:   valueOr(in.Status, models.DefaultProjectStatus),
		Tasks:    []models.Task{},
		Meetings: map[string]string{},
	}
	db.Projects = append(db.Projects, p)

	if err := s.save(ctx, db, Event{Kind: EventProjectCreated, ProjectID: p.ID, Detail: p.Name}); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject returns a single project.
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	p := db.FindProject(id)
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

// UpdateProject applies the non-nil fields of patch.
func (s *Service) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*models.Project, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	p := db.FindProject(id)
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", id, apperr.ErrNotFound)
	}

	s.logger.Debug("updating project", slog.String("project_id", id), slog.Any("before", *p))
	patch.apply(p)

	updated := *p
	if err := s.save(ctx, db, Event{Kind: EventProjectUpdated, ProjectID: id}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject removes the project. Deleting an unknown id is not an error.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	db, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	kept := db.Projects[:0]
	removed := false
	for _, p := range db.Projects {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	db.Projects = kept

	ev := Event{Kind: EventProjectDeleted, ProjectID: id}
	if !removed {
		ev = Event{}
	}
	return s.save(ctx, db, ev)
}

// SetMeetingNote upserts the note for week, or deletes the week when note
// is nil. It returns the project's meetings after the change.
func (s *Service) SetMeetingNote(ctx context.Context, projectID, week string, note *string) (map[string]string, error) {
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	p := db.FindProject(projectID)
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperr.ErrNotFound)
	}
	p.Normalize()

	if note == nil {
		if _, ok := p.Meetings[week]; !ok {
			return nil, fmt.Errorf("meeting %s: %w", week, apperr.ErrNotFound)
		}
		delete(p.Meetings, week)
		if err := s.save(ctx, db, Event{Kind: EventMeetingDeleted, ProjectID: projectID, Detail: week}); err != nil {
			return nil, err
		}
		return p.Meetings, nil
	}

	if week == "" {
		return nil, fmt.Errorf("%w: week: cannot be blank", apperr.ErrInvalidInput)
	}
	p.Meetings[week] = *note
	if err := s.save(ctx, db, Event{Kind: EventMeetingUpdated, ProjectID: projectID, Detail: week}); err != nil {
		return nil, err
	}
	return p.Meetings, nil
}

// CreateTask appends a To Do task to the project. Its id is the highest
// existing per-project counter plus one.
func (s *Service) CreateTask(ctx context.Context, projectID string, in CreateTaskInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	p := db.FindProject(projectID)
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, apperr.ErrNotFound)
	}

	t := models.Task{
		ID:     p.NextTaskID(),
		Title:  in.Title,
		Status: models.DefaultTaskStatus,
	}
	if in.StatusDate != nil {
		t.StatusDate = *in.StatusDate
	} else {
		t.StatusDate = models.StatusDate(s.now(), t.Status)
	}
	p.Tasks = append(p.Tasks, t)

	if err := s.save(ctx, db, Event{Kind: EventTaskCreated, ProjectID: projectID, TaskID: t.ID, Detail: t.Title}); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies the non-nil fields of patch. Setting Status without
// StatusDate stamps StatusDate with today's date and the status phrase.
func (s *Service) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	if patch.Status != nil && patch.StatusDate == nil {
		stamped := models.StatusDate(s.now(), *patch.Status)
		patch.StatusDate = &stamped
	}

	db, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	t, owner := db.FindTask(id)
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", id, apperr.ErrNotFound)
	}
	patch.apply(t)

	updated := *t
	if err := s.save(ctx, db, Event{Kind: EventTaskUpdated, ProjectID: owner.ID, TaskID: id, Detail: t.Status}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes the task from whichever project holds it.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	db, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	for i := range db.Projects {
		p := &db.Projects[i]
		kept := p.Tasks[:0]
		for _, t := range p.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(p.Tasks) {
			continue
		}
		p.Tasks = kept
		return s.save(ctx, db, Event{Kind: EventTaskDeleted, ProjectID: p.ID, TaskID: id})
	}
	return fmt.Errorf("task %s: %w", id, apperr.ErrNotFound)
}

// save persists db and notifies listeners. A zero Event skips notification.
func (s *Service) save(ctx context.Context, db *models.Database, ev Event) error {
	if err := s.store.Save(ctx, db); err != nil {
		return err
	}
	if ev.Kind == "" {
		return nil
	}
	ev.At = s.now()
	for _, l := range s.listeners {
		l.OnChange(ctx, ev)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
