package model

import (
	"time"

	"github.com/google/uuid"
)

// GradeAttempt is a recorded, successfully graded submission.
type GradeAttempt struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Question    string    `json:"question"`
	Code        string    `json:"code"`
	Grade       int       `json:"grade"`
	Feedback    string    `json:"feedback"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttemptListItem is the compact form used in attempt listings.
type AttemptListItem struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Grade     int       `json:"grade"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}
