package util

import "github.com/google/uuid"

// NewRequestID returns a fresh request correlation ID.
func NewRequestID() string {
	return uuid.NewString()
}
