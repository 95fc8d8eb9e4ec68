package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/followup/internal/projectservice"
)

// NewRouter creates a chi router with all API routes mounted.
// journal may be nil, in which case /activity answers 404.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *projectservice.Service, journal ActivityReader, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, journal)

	r := chi.NewRouter()
	r.Use(LimitBody(maxBodyBytes))

	// Projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Get("/projects/{id}", h.GetProject)
	r.Put("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)

	// Meetings and tasks nested under a project.
	r.Put("/projects/{id}/meetings", h.UpdateMeetings)
	r.Post("/projects/{id}/tasks", h.CreateTask)

	// Tasks by composite id.
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)

	r.Get("/owners", h.ListOwners)
	r.Get("/activity", h.ListActivity)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
