package model

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is an anonymous browser identity that groups grade attempts.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
