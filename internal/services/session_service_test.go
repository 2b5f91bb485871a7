package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivesh4/MindPath/internal/apperrors"
	"github.com/Shivesh4/MindPath/internal/models"
)

// fakeCatalog extends fakeStore with the catalog-only operations.
type fakeCatalog struct {
	*fakeStore
}

func (f *fakeCatalog) Create(_ context.Context, session *models.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeCatalog) ListByTutor(_ context.Context, tutorID uuid.UUID) ([]models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.StudySession
	for _, s := range f.sessions {
		if s.TutorID == tutorID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeCatalog) UpdateStatus(_ context.Context, id uuid.UUID, status models.SessionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return apperrors.NewNotFound("session")
	}
	if s.Status != models.SessionStatusScheduled {
		return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
	}
	s.Status = status
	return nil
}

func (f *fakeCatalog) UpdateCapacity(_ context.Context, id uuid.UUID, capacity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return apperrors.NewNotFound("session")
	}
	if s.Status != models.SessionStatusScheduled {
		return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
	}
	if capacity < len(f.attendees[id]) {
		return apperrors.NewConflict(apperrors.CodeCapacityBelowAttendees, "capacity cannot drop below current attendance")
	}
	s.Capacity = capacity
	return nil
}

func newSessionService(catalog *fakeCatalog) *SessionService {
	return NewSessionService(catalog, zerolog.Nop())
}

func TestSessionCreateDefaultsToScheduled(t *testing.T) {
	catalog := &fakeCatalog{newFakeStore()}
	svc := newSessionService(catalog)

	session := &models.StudySession{
		TutorID:         uuid.New(),
		Title:           "geometry",
		ScheduledAt:     time.Now().Add(time.Hour),
		DurationMinutes: 45,
		Capacity:        4,
	}

	require.NoError(t, svc.Create(context.Background(), session))
	assert.Equal(t, models.SessionStatusScheduled, session.Status)
	assert.NotEqual(t, uuid.Nil, session.ID)
}

func TestSessionCreateRejectsZeroCapacity(t *testing.T) {
	svc := newSessionService(&fakeCatalog{newFakeStore()})

	err := svc.Create(context.Background(), &models.StudySession{
		TutorID:         uuid.New(),
		DurationMinutes: 45,
		Capacity:        0,
	})
	assert.ErrorAs(t, err, new(*apperrors.ValidationError))
}

func TestSessionUpdateStatusOwnerOnly(t *testing.T) {
	catalog := &fakeCatalog{newFakeStore()}
	svc := newSessionService(catalog)
	tutorID := uuid.New()
	sessionID := catalog.addSession(tutorID, 2, models.SessionStatusScheduled)

	err := svc.UpdateStatus(context.Background(), sessionID, uuid.New(), models.SessionStatusCancelled)
	assert.ErrorAs(t, err, new(*apperrors.PermissionError))

	require.NoError(t, svc.UpdateStatus(context.Background(), sessionID, tutorID, models.SessionStatusCancelled))

	session, err := svc.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, session.Status)
}

func TestSessionUpdateStatusOnlyFromScheduled(t *testing.T) {
	catalog := &fakeCatalog{newFakeStore()}
	svc := newSessionService(catalog)
	tutorID := uuid.New()
	sessionID := catalog.addSession(tutorID, 2, models.SessionStatusCompleted)

	err := svc.UpdateStatus(context.Background(), sessionID, tutorID, models.SessionStatusCancelled)
	assert.True(t, apperrors.IsConflict(err, apperrors.CodeSessionNotScheduled))
}

func TestSessionCapacityCannotDropBelowAttendance(t *testing.T) {
	catalog := &fakeCatalog{newFakeStore()}
	svc := newSessionService(catalog)
	tutorID := uuid.New()
	sessionID := catalog.addSession(tutorID, 3, models.SessionStatusScheduled)

	catalog.attendees[sessionID] = map[uuid.UUID]time.Time{
		uuid.New(): time.Now(),
		uuid.New(): time.Now(),
	}

	err := svc.UpdateCapacity(context.Background(), sessionID, tutorID, 1)
	assert.True(t, apperrors.IsConflict(err, apperrors.CodeCapacityBelowAttendees))

	require.NoError(t, svc.UpdateCapacity(context.Background(), sessionID, tutorID, 2))
}
