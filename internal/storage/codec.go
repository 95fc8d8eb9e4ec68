package storage

import (
	"encoding/json"
	"fmt"

	"github.com/starford/followup/internal/models"
)

// document mirrors models.Database but keeps next_id optional so legacy
// files written before the counter existed can be detected.
type document struct {
	Projects []models.Project `json:"projects"`
	NextID   *int             `json:"next_id"`
}

// Decode parses a stored document, deriving next_id when it is absent.
func Decode(data []byte) (*models.Database, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode: %w", err)
	}
	db := &models.Database{Projects: doc.Projects}
	if doc.NextID != nil {
		db.NextID = *doc.NextID
	} else {
		db.NextID = models.LegacyNextID(doc.Projects)
	}
	db.Normalize()
	return db, nil
}

// Encode renders db with two-space indentation and a trailing newline.
func Encode(db *models.Database) ([]byte, error) {
	db.Normalize()
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return append(data, '\n'), nil
}
