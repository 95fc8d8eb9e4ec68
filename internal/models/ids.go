package models

import (
	"strconv"
	"strings"
)

// AllocateProjectID hands out the current NextID and advances the counter.
func (db *Database) AllocateProjectID() string {
	if db.NextID < 1 {
		db.NextID = 1
	}
	id := db.NextID
	db.NextID++
	return strconv.Itoa(id)
}

// LegacyNextID derives next_id for documents written before the counter existed:
// one past the largest numeric project id, or 1 when there is none.
// Non-numeric ids are ignored.
func LegacyNextID(projects []Project) int {
	highest := 0
	for _, p := range projects {
		n, err := strconv.Atoi(p.ID)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

// IsCompositeTaskID reports whether id already carries the project prefix.
func IsCompositeTaskID(id string) bool {
	return strings.Contains(id, TaskIDSeparator)
}

// ComposeTaskID builds "{projectID}-{local}".
func ComposeTaskID(projectID, local string) string {
	return projectID + TaskIDSeparator + local
}

// TaskCounter parses the numeric suffix after the last separator.
// Legacy ids without a separator are parsed whole.
func TaskCounter(id string) (int, bool) {
	suffix := id
	if i := strings.LastIndex(id, TaskIDSeparator); i >= 0 {
		suffix = id[i+len(TaskIDSeparator):]
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextTaskID returns the id for a new task: the highest existing counter in
// the project plus one. Counters are derived, never stored, so an emptied
// project starts again at 1.
func (p *Project) NextTaskID() string {
	highest := 0
	for _, t := range p.Tasks {
		if n, ok := TaskCounter(t.ID); ok && n > highest {
			highest = n
		}
	}
	return ComposeTaskID(p.ID, strconv.Itoa(highest+1))
}
