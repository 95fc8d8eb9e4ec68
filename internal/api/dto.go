package api

import (
	"encoding/json"
	"fmt"

	"github.com/starford/followup/internal/apperr"
	"github.com/starford/followup/internal/models"
	"github.com/starford/followup/internal/projectservice"
)

// Database is the full document returned by GET /api/projects.
type Database = models.Database

// Project is the project response type (aliased from the domain layer).
type Project = models.Project

// Task is the task response type (aliased from the domain layer).
type Task = models.Task

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest = projectservice.CreateProjectInput

// UpdateProjectRequest is the partial request body for updating a project.
type UpdateProjectRequest = projectservice.ProjectPatch

// CreateTaskRequest is the request body for adding a task.
type CreateTaskRequest = projectservice.CreateTaskInput

// UpdateTaskRequest is the partial request body for updating a task.
type UpdateTaskRequest = projectservice.TaskPatch

// MeetingNoteRequest sets or deletes one week's note. A JSON null note
// deletes the week; an absent note is rejected.
type MeetingNoteRequest struct {
	Week string          `json:"week" example:"2026-42"`
	Note json.RawMessage `json:"note" swaggertype:"string" example:"Discussed the release plan"`
}

// note returns the decoded note, nil for an explicit JSON null.
func (m MeetingNoteRequest) note() (*string, error) {
	if len(m.Note) == 0 {
		return nil, fmt.Errorf("%w: note: is required", apperr.ErrInvalidInput)
	}
	if string(m.Note) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(m.Note, &s); err != nil {
		return nil, fmt.Errorf("%w: note: must be a string or null", apperr.ErrInvalidInput)
	}
	return &s, nil
}

// MeetingsResponse is the project's week → note map.
type MeetingsResponse map[string]string

// OwnersResponse lists distinct project owners.
type OwnersResponse struct {
	Owners []string `json:"owners" validate:"required"`
}
