package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivesh4/MindPath/internal/apperrors"
	"github.com/Shivesh4/MindPath/internal/models"
)

// SessionStore is the slice of the session catalog the booking workflow
// reads. It never writes sessions.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error)
}

// BookingTx is the transactional view used by capacity-affecting
// operations. GetSessionForUpdate must lock the session row for the
// remainder of the transaction so count-then-insert cannot race.
type BookingTx interface {
	GetSessionForUpdate(ctx context.Context, sessionID uuid.UUID) (*models.StudySession, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error)
	CountAttendees(ctx context.Context, sessionID uuid.UUID) (int, error)
	InsertAttendee(ctx context.Context, sessionID, studentID uuid.UUID) error
	SetRequestStatus(ctx context.Context, requestID uuid.UUID, status models.JoinRequestStatus, decidedAt time.Time) error
	DeleteAttendee(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error)
	DeleteActiveRequest(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error)
}

// BookingStore owns join request rows and the attendee ledger.
type BookingStore interface {
	InTx(ctx context.Context, fn func(tx BookingTx) error) error
	FindActiveRequest(ctx context.Context, sessionID, studentID uuid.UUID) (*models.JoinRequest, error)
	CreateRequest(ctx context.Context, request *models.JoinRequest) error
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error)
	AttendeeExists(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error)
	ListAttendees(ctx context.Context, sessionID uuid.UUID) ([]models.Attendee, error)
	ListRequestsForTutor(ctx context.Context, tutorID uuid.UUID, status models.JoinRequestStatus) ([]models.JoinRequest, error)
}

// BookingService runs the join-request state machine. It is the only
// writer of the attendee ledger; every path that can consume a seat goes
// through the approval transaction below.
type BookingService struct {
	sessions SessionStore
	store    BookingStore
	log      zerolog.Logger
}

func NewBookingService(sessions SessionStore, store BookingStore, log zerolog.Logger) *BookingService {
	return &BookingService{sessions: sessions, store: store, log: log}
}

// RequestJoin moves (session, student) from NONE or REJECTED to PENDING.
func (s *BookingService) RequestJoin(ctx context.Context, sessionID, studentID uuid.UUID) (*models.JoinRequest, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusScheduled {
		return nil, apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not open for requests")
	}

	active, err := s.store.FindActiveRequest(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		switch active.Status {
		case models.JoinRequestStatusPending:
			return nil, apperrors.NewConflict(apperrors.CodeDuplicateRequest, "a pending request already exists")
		case models.JoinRequestStatusApproved:
			return nil, apperrors.NewConflict(apperrors.CodeAlreadyApproved, "request already approved")
		}
	}

	// A ledger row without an active request should not happen, but if
	// it does the student must not end up with a second seat.
	attending, err := s.store.AttendeeExists(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if attending {
		return nil, apperrors.NewConflict(apperrors.CodeAlreadyAttending, "already attending this session")
	}

	request := &models.JoinRequest{
		ID:        uuid.New(),
		SessionID: sessionID,
		StudentID: studentID,
		Status:    models.JoinRequestStatusPending,
	}

	// The partial unique index on active requests backstops the checks
	// above against concurrent duplicate requests.
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("session_id", sessionID).
		Stringer("student_id", studentID).
		Msg("join request created")

	return request, nil
}

// Approve grants a seat. The whole decision runs in one transaction with
// the session row locked: re-read request, count ledger rows, compare to
// capacity, then either insert the ledger row or reject. Concurrent
// approvals for the same session serialize on the row lock, so the count
// can never be stale when the insert happens.
func (s *BookingService) Approve(ctx context.Context, requestID, actingTutorID uuid.UUID) (*models.JoinRequest, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var outcome *models.JoinRequest
	var conflictErr error

	err = s.store.InTx(ctx, func(tx BookingTx) error {
		session, err := tx.GetSessionForUpdate(ctx, request.SessionID)
		if err != nil {
			return err
		}
		if session.TutorID != actingTutorID {
			return apperrors.NewPermission("only the session owner can approve requests")
		}
		if session.Status != models.SessionStatusScheduled {
			return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
		}

		current, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != models.JoinRequestStatusPending {
			return apperrors.NewConflict(apperrors.CodeDuplicateRequest, "request is not pending")
		}

		now := time.Now()
		count, err := tx.CountAttendees(ctx, request.SessionID)
		if err != nil {
			return err
		}
		if count >= session.Capacity {
			// The rejection is committed; only the caller sees an error.
			if err := tx.SetRequestStatus(ctx, requestID, models.JoinRequestStatusRejected, now); err != nil {
				return err
			}
			current.Status = models.JoinRequestStatusRejected
			current.DecidedAt = &now
			outcome = current
			conflictErr = apperrors.NewConflict(apperrors.CodeSessionFull, "session has no free seats")
			return nil
		}

		if err := tx.InsertAttendee(ctx, request.SessionID, request.StudentID); err != nil {
			return err
		}
		if err := tx.SetRequestStatus(ctx, requestID, models.JoinRequestStatusApproved, now); err != nil {
			return err
		}
		current.Status = models.JoinRequestStatusApproved
		current.DecidedAt = &now
		outcome = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if conflictErr != nil {
		s.log.Info().
			Stringer("request_id", requestID).
			Stringer("session_id", request.SessionID).
			Msg("approval rejected, session full")
		return outcome, conflictErr
	}

	s.log.Info().
		Stringer("request_id", requestID).
		Stringer("session_id", request.SessionID).
		Stringer("student_id", request.StudentID).
		Msg("join request approved")

	return outcome, nil
}

// Deny rejects a pending request. No capacity check: denial never
// touches the ledger.
func (s *BookingService) Deny(ctx context.Context, requestID, actingTutorID uuid.UUID) (*models.JoinRequest, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var outcome *models.JoinRequest
	err = s.store.InTx(ctx, func(tx BookingTx) error {
		session, err := tx.GetSessionForUpdate(ctx, request.SessionID)
		if err != nil {
			return err
		}
		if session.TutorID != actingTutorID {
			return apperrors.NewPermission("only the session owner can deny requests")
		}
		if session.Status != models.SessionStatusScheduled {
			return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
		}

		current, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if current.Status != models.JoinRequestStatusPending {
			return apperrors.NewConflict(apperrors.CodeDuplicateRequest, "request is not pending")
		}

		now := time.Now()
		if err := tx.SetRequestStatus(ctx, requestID, models.JoinRequestStatusRejected, now); err != nil {
			return err
		}
		current.Status = models.JoinRequestStatusRejected
		current.DecidedAt = &now
		outcome = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("request_id", requestID).
		Msg("join request denied")

	return outcome, nil
}

// Leave frees the student's seat, or withdraws their pending request if
// they never got one. An approved or pending request row for the pair is
// removed along with the seat, so the student can request again later.
func (s *BookingService) Leave(ctx context.Context, sessionID, studentID uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx BookingTx) error {
		left, err := tx.DeleteAttendee(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if left {
			if session.Status != models.SessionStatusScheduled {
				return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
			}
			if _, err := tx.DeleteActiveRequest(ctx, sessionID, studentID); err != nil {
				return err
			}
			s.log.Info().
				Stringer("session_id", sessionID).
				Stringer("student_id", studentID).
				Msg("attendee left session")
			return nil
		}

		withdrawn, err := tx.DeleteActiveRequest(ctx, sessionID, studentID)
		if err != nil {
			return err
		}
		if !withdrawn {
			return apperrors.NewNotFound("join request")
		}

		s.log.Info().
			Stringer("session_id", sessionID).
			Stringer("student_id", studentID).
			Msg("join request withdrawn")
		return nil
	})
}

// ListAttendees returns the ledger for a session. Restricted to the
// session owner and approved attendees.
func (s *BookingService) ListAttendees(ctx context.Context, sessionID, callerID uuid.UUID) ([]models.Attendee, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.TutorID != callerID {
		attending, err := s.store.AttendeeExists(ctx, sessionID, callerID)
		if err != nil {
			return nil, err
		}
		if !attending {
			return nil, apperrors.NewPermission("attendee list is restricted to the owner and attendees")
		}
	}

	return s.store.ListAttendees(ctx, sessionID)
}

// ListRequests returns join requests across the tutor's sessions,
// optionally filtered by status.
func (s *BookingService) ListRequests(ctx context.Context, tutorID uuid.UUID, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	return s.store.ListRequestsForTutor(ctx, tutorID, status)
}
