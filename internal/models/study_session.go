package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// StudySession is a bookable tutoring slot with a fixed number of seats.
type StudySession struct {
	ID              uuid.UUID     `db:"id"`
	TutorID         uuid.UUID     `db:"tutor_id"`
	Title           string        `db:"title"`
	ScheduledAt     time.Time     `db:"scheduled_at"`
	DurationMinutes int           `db:"duration_minutes"`
	Capacity        int           `db:"capacity"`
	Status          SessionStatus `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
