// Package models defines the domain types for the project tracker.
package models

// Task statuses.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Defaults applied when a create request leaves a field out.
const (
	DefaultProjectStatus = StatusInProgress
	DefaultTaskStatus    = StatusToDo
	DefaultOwner         = ""
)

// TaskIDSeparator joins the owning project id and the per-project task counter.
const TaskIDSeparator = "-"

// Database is the whole persisted document.
type Database struct {
	Projects []Project `json:"projects"`
	NextID   int       `json:"next_id"`
}

// Project groups tasks and weekly meeting notes.
type Project struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Owner    string            `json:"owner"`
	Status   string            `json:"status"`
	Tasks    []Task            `json:"tasks"`
	Meetings map[string]string `json:"meetings"`
}

// Task is a single work item inside a project. ID has the form "{projectID}-{n}".
type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	StatusDate string `json:"statusDate"`
}

// NewDatabase returns the document written when no data file exists yet.
func NewDatabase() *Database {
	return &Database{Projects: []Project{}, NextID: 1}
}

// FindProject returns a pointer into db.Projects, or nil.
func (db *Database) FindProject(id string) *Project {
	for i := range db.Projects {
		if db.Projects[i].ID == id {
			return &db.Projects[i]
		}
	}
	return nil
}

// FindTask searches every project for the task id and returns the task and its owner.
func (db *Database) FindTask(id string) (*Task, *Project) {
	for i := range db.Projects {
		p := &db.Projects[i]
		for j := range p.Tasks {
			if p.Tasks[j].ID == id {
				return &p.Tasks[j], p
			}
		}
	}
	return nil, nil
}

// Normalize replaces nil collections so the document always serializes
// "tasks": [] and "meetings": {} instead of null.
func (db *Database) Normalize() {
	if db.Projects == nil {
		db.Projects = []Project{}
	}
	for i := range db.Projects {
		db.Projects[i].Normalize()
	}
}

// Normalize replaces nil collections on a single project.
func (p *Project) Normalize() {
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	if p.Meetings == nil {
		p.Meetings = map[string]string{}
	}
}
