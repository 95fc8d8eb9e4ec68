package projectservice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/followup/internal/apperr"
	"github.com/starford/followup/internal/models"
	"github.com/starford/followup/internal/storage"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory(nil)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(store, opts...), store
}

func strptr(s string) *string { return &s }

func TestCreateProject_AssignsNextID(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	before, err := store.Load(ctx)
	require.NoError(t, err)

	p, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Website"})
	require.NoError(t, err)
	require.Equal(t, "1", p.ID)
	require.Equal(t, models.DefaultProjectStatus, p.Status)
	require.Equal(t, "", p.Owner)
	require.NotNil(t, p.Tasks)
	require.NotNil(t, p.Meetings)

	after, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, before.NextID+1, after.NextID)

	p2, err := svc.CreateProject(ctx, CreateProjectInput{Name: "App", Owner: strptr("mehmet"), Status: strptr("Done")})
	require.NoError(t, err)
	require.Equal(t, "2", p2.ID)
	require.Equal(t, "mehmet", p2.Owner)
	require.Equal(t, "Done", p2.Status)
}

func TestCreateProject_IDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	p, err := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProject(ctx, p.ID))

	p2, err := svc.CreateProject(ctx, CreateProjectInput{Name: "b"})
	require.NoError(t, err)
	require.Equal(t, "2", p2.ID)
}

func TestCreateProject_RequiresName(t *testing.T) {
	svc, store := newTestService(t)
	_, err := svc.CreateProject(context.Background(), CreateProjectInput{})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.Zero(t, store.Saves())
}

func TestGetProject_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetProject(context.Background(), "42")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProject_Partial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, err := svc.CreateProject(ctx, CreateProjectInput{Name: "a", Owner: strptr("ali")})
	require.NoError(t, err)

	got, err := svc.UpdateProject(ctx, p.ID, ProjectPatch{Status: strptr("Done")})
	require.NoError(t, err)
	require.Equal(t, "a", got.Name)
	require.Equal(t, "ali", got.Owner)
	require.Equal(t, "Done", got.Status)

	_, err = svc.UpdateProject(ctx, "99", ProjectPatch{Name: strptr("x")})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteProject_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	require.NoError(t, svc.DeleteProject(ctx, "nope"))
}

func TestCreateTask_IDsPerProject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	b, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "b"})

	t1, err := svc.CreateTask(ctx, a.ID, CreateTaskInput{Title: "one"})
	require.NoError(t, err)
	t2, err := svc.CreateTask(ctx, a.ID, CreateTaskInput{Title: "two"})
	require.NoError(t, err)
	t3, err := svc.CreateTask(ctx, b.ID, CreateTaskInput{Title: "three"})
	require.NoError(t, err)

	require.Equal(t, "1-1", t1.ID)
	require.Equal(t, "1-2", t2.ID)
	require.Equal(t, "2-1", t3.ID)
	require.Equal(t, models.StatusToDo, t1.Status)
	require.Equal(t, "19.10.2026 tarihinde yapılacaklara eklendi", t1.StatusDate)
}

func TestCreateTask_CounterResetsWhenEmptied(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})

	t1, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "one"})
	t2, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "two"})
	require.NoError(t, svc.DeleteTask(ctx, t1.ID))
	require.NoError(t, svc.DeleteTask(ctx, t2.ID))

	t3, err := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "again"})
	require.NoError(t, err)
	require.Equal(t, "1-1", t3.ID)
}

func TestCreateTask_UsesMaxNotCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})

	t1, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "one"})
	_, _ = svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "two"})
	require.NoError(t, svc.DeleteTask(ctx, t1.ID))

	t3, err := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "three"})
	require.NoError(t, err)
	require.Equal(t, "1-3", t3.ID)
}

func TestCreateTask_ExplicitStatusDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})

	task, err := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "x", StatusDate: strptr("imported")})
	require.NoError(t, err)
	require.Equal(t, "imported", task.StatusDate)
}

func TestCreateTask_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.CreateTask(ctx, "7", CreateTaskInput{Title: "x"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	_, err = svc.CreateTask(ctx, p.ID, CreateTaskInput{})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdateTask_StampsStatusDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	task, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "x"})

	cases := map[string]string{
		models.StatusDone:       "tamamlandı",
		models.StatusInProgress: "devam ediyor",
		models.StatusToDo:       "yapılacaklara eklendi",
	}
	for status, phrase := range cases {
		got, err := svc.UpdateTask(ctx, task.ID, TaskPatch{Status: strptr(status)})
		require.NoError(t, err)
		require.Equal(t, status, got.Status)
		require.True(t, strings.HasPrefix(got.StatusDate, "19.10.2026"), got.StatusDate)
		require.True(t, strings.HasSuffix(got.StatusDate, phrase), got.StatusDate)
	}
}

func TestUpdateTask_ExplicitStatusDateWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	task, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "x"})

	got, err := svc.UpdateTask(ctx, task.ID, TaskPatch{Status: strptr(models.StatusDone), StatusDate: strptr("custom")})
	require.NoError(t, err)
	require.Equal(t, "custom", got.StatusDate)
}

func TestUpdateTask_TitleOnlyKeepsStatusDate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	task, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "x", StatusDate: strptr("kept")})

	got, err := svc.UpdateTask(ctx, task.ID, TaskPatch{Title: strptr("renamed")})
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)
	require.Equal(t, "kept", got.StatusDate)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateTask(context.Background(), "1-1", TaskPatch{Title: strptr("x")})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteTask_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	require.ErrorIs(t, svc.DeleteTask(context.Background(), "1-1"), apperr.ErrNotFound)
}

func TestMeetingNotes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})

	m, err := svc.SetMeetingNote(ctx, p.ID, "2026-41", strptr("first"))
	require.NoError(t, err)
	require.Equal(t, map[string]string{"2026-41": "first"}, m)

	m, err = svc.SetMeetingNote(ctx, p.ID, "2026-42", strptr("second"))
	require.NoError(t, err)
	require.Len(t, m, 2)

	m, err = svc.SetMeetingNote(ctx, p.ID, "2026-41", strptr("edited"))
	require.NoError(t, err)
	require.Equal(t, "edited", m["2026-41"])

	m, err = svc.SetMeetingNote(ctx, p.ID, "2026-41", nil)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"2026-42": "second"}, m)

	_, err = svc.SetMeetingNote(ctx, p.ID, "2026-41", nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.SetMeetingNote(ctx, "99", "2026-41", strptr("x"))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.SetMeetingNote(ctx, p.ID, "", strptr("x"))
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestDatabase_OwnerFilterAndOwners(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, _ = svc.CreateProject(ctx, CreateProjectInput{Name: "a", Owner: strptr("zeynep")})
	_, _ = svc.CreateProject(ctx, CreateProjectInput{Name: "b", Owner: strptr("ali")})
	_, _ = svc.CreateProject(ctx, CreateProjectInput{Name: "c", Owner: strptr("zeynep")})
	_, _ = svc.CreateProject(ctx, CreateProjectInput{Name: "d"})

	db, err := svc.Database(ctx, "zeynep")
	require.NoError(t, err)
	require.Len(t, db.Projects, 2)
	require.Equal(t, 5, db.NextID)

	owners, err := svc.Owners(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"ali", "zeynep"}, owners)
}

func TestListenersReceiveEvents(t *testing.T) {
	ctx := context.Background()
	var got []Event
	svc, _ := newTestService(t, WithListener(ListenerFunc(func(_ context.Context, ev Event) {
		got = append(got, ev)
	})))

	p, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "a"})
	task, _ := svc.CreateTask(ctx, p.ID, CreateTaskInput{Title: "x"})
	_, _ = svc.UpdateTask(ctx, task.ID, TaskPatch{Status: strptr(models.StatusDone)})
	_ = svc.DeleteTask(ctx, task.ID)
	_ = svc.DeleteProject(ctx, "missing")
	_ = svc.DeleteProject(ctx, p.ID)

	kinds := make([]string, len(got))
	for i, ev := range got {
		kinds[i] = ev.Kind
	}
	require.Equal(t, []string{
		EventProjectCreated,
		EventTaskCreated,
		EventTaskUpdated,
		EventTaskDeleted,
		EventProjectDeleted,
	}, kinds)
	require.Equal(t, "1-1", got[1].TaskID)
	require.Equal(t, fixedNow, got[0].At)
}
