package models

import (
	"time"

	"github.com/google/uuid"
)

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "pending"
	JoinRequestStatusApproved JoinRequestStatus = "approved"
	JoinRequestStatusRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a student's application for a seat in a session.
// At most one pending-or-approved request may exist per
// (session, student) pair; rejected rows may be superseded by a new
// request, so several rejected rows can accumulate over time.
type JoinRequest struct {
	ID        uuid.UUID         `db:"id"`
	SessionID uuid.UUID         `db:"session_id"`
	StudentID uuid.UUID         `db:"student_id"`
	Status    JoinRequestStatus `db:"status"`

	CreatedAt time.Time  `db:"created_at"`
	DecidedAt *time.Time `db:"decided_at"`
}
