package engine

import "github.com/google/uuid"

// generateID returns a fresh session ID.
func generateID() string {
	return uuid.NewString()
}
