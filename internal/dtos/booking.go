package dtos

import (
	"time"

	"github.com/google/uuid"
)

// Tutor decision on a pending join request
type DecideRequestRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	Action    string    `json:"action" binding:"required,oneof=approve deny"`
}

type JoinRequestResponse struct {
	ID        uuid.UUID  `json:"id"`
	SessionID uuid.UUID  `json:"session_id"`
	StudentID uuid.UUID  `json:"student_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

type AttendeeResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	StudentID uuid.UUID `json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
}
