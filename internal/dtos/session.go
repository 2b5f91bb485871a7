package dtos

import (
	"time"

	"github.com/google/uuid"
)

// Create session request (tutor only)
type CreateSessionRequest struct {
	Title           string    `json:"title" binding:"required,max=200"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0,lte=480"`
	Capacity        int       `json:"capacity" binding:"required,gte=1"`
}

// Session status change request (owner only)
type UpdateSessionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}

type SessionResponse struct {
	ID              uuid.UUID `json:"id"`
	TutorID         uuid.UUID `json:"tutor_id"`
	Title           string    `json:"title"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
