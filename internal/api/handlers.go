package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/followup/internal/activity"
	"github.com/starford/followup/internal/checksum"
	"github.com/starford/followup/internal/projectservice"
)

// ActivityReader is the read side of the activity journal.
type ActivityReader interface {
	Recent(ctx context.Context, projectID string, limit int) ([]activity.Entry, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc      *projectservice.Service
	activity ActivityReader
}

// NewHandler creates a new Handler. journal may be nil.
func NewHandler(svc *projectservice.Service, journal ActivityReader) *Handler {
	return &Handler{svc: svc, activity: journal}
}

// ListProjects handles GET /api/projects.
//
//	@Summary		Return the whole database
//	@Tags			projects
//	@Produce		json
//	@Param			owner	query		string	false	"Only projects of this owner"
//	@Success		200		{object}	Database
//	@Success		304		"Not modified"
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	db, err := h.svc.Database(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, err, "not found", "list projects")
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(db); err != nil {
		writeError(w, err, "not found", "list projects")
		return
	}
	etag := checksum.ETag(buf.Bytes())
	w.Header().Set("ETag", etag)
	if checksum.Matches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// CreateProject handles POST /api/projects.
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProjectRequest	true	"Project to create"
//	@Success		201		{object}	Project
//	@Failure		400		{object}	errResponse
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "", "create project")
		return
	}
	p, err := h.svc.CreateProject(r.Context(), req)
	if err != nil {
		writeError(w, err, "project not found", "create project")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/projects/{id}.
//
//	@Summary		Get a single project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project id"
//	@Success		200	{object}	Project
//	@Failure		404	{object}	errResponse
//	@Router			/projects/{id} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "project not found", "get project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProject handles PUT /api/projects/{id}.
//
//	@Summary		Partially update a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Project id"
//	@Param			body	body		UpdateProjectRequest	true	"Fields to change"
//	@Success		200		{object}	Project
//	@Failure		404		{object}	errResponse
//	@Router			/projects/{id} [put]
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "", "update project")
		return
	}
	p, err := h.svc.UpdateProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err, "project not found", "update project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}. Unknown ids still succeed.
//
//	@Summary		Delete a project
//	@Tags			projects
//	@Param			id	path		string	true	"Project id"
//	@Success		200	{object}	messageResponse
//	@Router			/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "project not found", "delete project")
		return
	}
	writeJSON(w, http.StatusOK, messageBody("project deleted"))
}

// UpdateMeetings handles PUT /api/projects/{id}/meetings.
//
//	@Summary		Set or delete a weekly meeting note
//	@Tags			meetings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project id"
//	@Param			body	body		MeetingNoteRequest	true	"Week and note (null deletes)"
//	@Success		200		{object}	MeetingsResponse
//	@Failure		404		{object}	errResponse
//	@Router			/projects/{id}/meetings [put]
func (h *Handler) UpdateMeetings(w http.ResponseWriter, r *http.Request) {
	var req MeetingNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "", "update meetings")
		return
	}
	note, err := req.note()
	if err != nil {
		writeError(w, err, "", "update meetings")
		return
	}

	projectID := chi.URLParam(r, "id")
	meetings, err := h.svc.SetMeetingNote(r.Context(), projectID, req.Week, note)
	if err != nil {
		notFound := "project not found"
		if note == nil {
			if _, getErr := h.svc.GetProject(r.Context(), projectID); getErr == nil {
				notFound = req.Week + " not found"
			}
		}
		writeError(w, err, notFound, "update meetings")
		return
	}
	if note == nil {
		writeJSON(w, http.StatusOK, messageBody(req.Week+" deleted"))
		return
	}
	writeJSON(w, http.StatusOK, MeetingsResponse(meetings))
}

// CreateTask handles POST /api/projects/{id}/tasks.
//
//	@Summary		Add a task to a project
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project id"
//	@Param			body	body		CreateTaskRequest	true	"Task to add"
//	@Success		201		{object}	Task
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/projects/{id}/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "", "create task")
		return
	}
	t, err := h.svc.CreateTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err, "project not found", "create task")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PUT /api/tasks/{id}.
//
//	@Summary		Partially update a task
//	@Description	Setting status without statusDate stamps statusDate with today's date.
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Task id (projectId-n)"
//	@Param			body	body		UpdateTaskRequest	true	"Fields to change"
//	@Success		200		{object}	Task
//	@Failure		404		{object}	errResponse
//	@Router			/tasks/{id} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "", "update task")
		return
	}
	t, err := h.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err, "task not found", "update task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/{id}.
//
//	@Summary		Delete a task
//	@Tags			tasks
//	@Param			id	path		string	true	"Task id (projectId-n)"
//	@Success		200	{object}	messageResponse
//	@Failure		404	{object}	errResponse
//	@Router			/tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "task not found", "delete task")
		return
	}
	writeJSON(w, http.StatusOK, messageBody("task deleted"))
}

// ListOwners handles GET /api/owners.
//
//	@Summary		Distinct project owners
//	@Tags			projects
//	@Produce		json
//	@Success		200	{object}	OwnersResponse
//	@Router			/owners [get]
func (h *Handler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.svc.Owners(r.Context())
	if err != nil {
		writeError(w, err, "not found", "list owners")
		return
	}
	writeJSON(w, http.StatusOK, OwnersResponse{Owners: owners})
}

// ListActivity handles GET /api/activity.
//
//	@Summary		Recent changes, newest first
//	@Tags			activity
//	@Produce		json
//	@Param			project	query		string	false	"Only this project"
//	@Param			limit	query		int		false	"Max entries (default 50, max 500)"
//	@Success		200		{array}		activity.Entry
//	@Failure		404		{object}	errResponse
//	@Router			/activity [get]
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	if h.activity == nil {
		writeJSON(w, http.StatusNotFound, errorBody("activity journal disabled"))
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	entries, err := h.activity.Recent(r.Context(), q.Get("project"), limit)
	if err != nil {
		slog.Error("list activity failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
