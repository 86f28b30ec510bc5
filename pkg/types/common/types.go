// Package common holds the small shared value types used across every layer
// of SmiClean: entity identifiers and dataset source references.
package common

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a string alias for a UUID v4.
type ID string

// NewID generates a new random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Validate reports whether the ID is a well-formed UUID.
func (id ID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("common: invalid ID %q: %w", string(id), err)
	}
	return nil
}

func (id ID) String() string { return string(id) }
