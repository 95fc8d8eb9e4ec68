package projectservice

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/followup/internal/models"
)

// CreateProjectInput holds the fields accepted when creating a project.
// Nil pointers take the defaults from the models package.
type CreateProjectInput struct {
	Name   string  `json:"name"`
	Owner  *string `json:"owner,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Validate checks required fields.
func (in CreateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
	)
}

// ProjectPatch is a partial project update; only non-nil fields are applied.
type ProjectPatch struct {
	Name   *string `json:"name,omitempty"`
	Owner  *string `json:"owner,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (p ProjectPatch) apply(dst *models.Project) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Owner != nil {
		dst.Owner = *p.Owner
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
}

// CreateTaskInput holds the fields accepted when adding a task.
type CreateTaskInput struct {
	Title      string  `json:"title"`
	StatusDate *string `json:"statusDate,omitempty"`
}

// Validate checks required fields.
func (in CreateTaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
	)
}

// TaskPatch is a partial task update; only non-nil fields are applied.
type TaskPatch struct {
	Title      *string `json:"title,omitempty"`
	Status     *string `json:"status,omitempty"`
	StatusDate *string `json:"statusDate,omitempty"`
}

func (p TaskPatch) apply(dst *models.Task) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.StatusDate != nil {
		dst.StatusDate = *p.StatusDate
	}
}
