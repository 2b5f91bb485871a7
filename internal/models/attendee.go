package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is a row in the seat ledger: the authoritative record that a
// student occupies a seat in a session. Rows are written only by the
// booking workflow, inside the approval transaction.
type Attendee struct {
	SessionID uuid.UUID `db:"session_id"`
	StudentID uuid.UUID `db:"student_id"`
	CreatedAt time.Time `db:"created_at"`
}
