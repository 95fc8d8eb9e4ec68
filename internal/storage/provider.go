// Package storage defines the persistence abstraction for the project database.
package storage

import (
	"context"

	"github.com/starford/followup/internal/models"
)

// Provider loads and saves the whole database document.
type Provider interface {
	// Load returns a freshly decoded copy of the database.
	Load(ctx context.Context) (*models.Database, error)
	// Save replaces the stored document with db.
	Save(ctx context.Context, db *models.Database) error
}
