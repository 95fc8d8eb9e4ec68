// Package apperr holds the sentinel errors shared by the service and transport layers.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
