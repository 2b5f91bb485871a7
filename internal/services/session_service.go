package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivesh4/MindPath/internal/apperrors"
	"github.com/Shivesh4/MindPath/internal/models"
)

// SessionCatalogStore is the full session persistence surface.
type SessionCatalogStore interface {
	SessionStore
	Create(ctx context.Context, session *models.StudySession) error
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.StudySession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error
	UpdateCapacity(ctx context.Context, id uuid.UUID, capacity int) error
}

// SessionService owns the session catalog: creation, lookup and
// lifecycle transitions. Seat allocation is not its business; that
// belongs to BookingService.
type SessionService struct {
	store SessionCatalogStore
	log   zerolog.Logger
}

func NewSessionService(store SessionCatalogStore, log zerolog.Logger) *SessionService {
	return &SessionService{store: store, log: log}
}

func (s *SessionService) Create(ctx context.Context, session *models.StudySession) error {
	if session.Capacity < 1 {
		return apperrors.NewValidation("capacity must be at least 1")
	}
	if session.DurationMinutes <= 0 {
		return apperrors.NewValidation("duration must be positive")
	}

	session.ID = uuid.New()
	session.Status = models.SessionStatusScheduled

	if err := s.store.Create(ctx, session); err != nil {
		return err
	}

	s.log.Info().
		Stringer("session_id", session.ID).
		Stringer("tutor_id", session.TutorID).
		Int("capacity", session.Capacity).
		Msg("session created")

	return nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	return s.store.GetByID(ctx, id)
}

func (s *SessionService) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.StudySession, error) {
	return s.store.ListByTutor(ctx, tutorID)
}

// UpdateStatus moves a scheduled session to completed or cancelled.
func (s *SessionService) UpdateStatus(ctx context.Context, id, actingTutorID uuid.UUID, status models.SessionStatus) error {
	if status != models.SessionStatusCompleted && status != models.SessionStatusCancelled {
		return apperrors.NewValidation("status must be completed or cancelled")
	}

	session, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session.TutorID != actingTutorID {
		return apperrors.NewPermission("only the session owner can change its status")
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.log.Info().
		Stringer("session_id", id).
		Str("status", string(status)).
		Msg("session status changed")

	return nil
}

// UpdateCapacity resizes a session. The store refuses to shrink below
// current attendance, under the same session row lock approvals use.
func (s *SessionService) UpdateCapacity(ctx context.Context, id, actingTutorID uuid.UUID, capacity int) error {
	if capacity < 1 {
		return apperrors.NewValidation("capacity must be at least 1")
	}

	session, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session.TutorID != actingTutorID {
		return apperrors.NewPermission("only the session owner can change its capacity")
	}

	return s.store.UpdateCapacity(ctx, id, capacity)
}
