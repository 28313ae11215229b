package models

import "github.com/google/uuid"

// NewID generates a UUIDv7 (timestamp-sortable) identifier, per §4.1. Falls
// back to a random v4 only if the system clock is unavailable to the
// generator, which in practice never happens on a running server.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
