package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Shivesh4/MindPath/internal/apperrors"
	"github.com/Shivesh4/MindPath/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create a new study session
func (r *SessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	const query = `
	INSERT INTO study_sessions (
		id,
		tutor_id,
		title,
		scheduled_at,
		duration_minutes,
		capacity,
		status,
		created_at,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		session.ID,
		session.TutorID,
		session.Title,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Capacity,
		session.Status,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
}

// Get session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	const query = `
	SELECT
		id,
		tutor_id,
		title,
		scheduled_at,
		duration_minutes,
		capacity,
		status,
		created_at,
		updated_at
	FROM study_sessions
	WHERE id = $1
	`

	var session models.StudySession

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.TutorID,
		&session.Title,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Capacity,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFound("session")
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// List sessions owned by a tutor, newest first
func (r *SessionRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.StudySession, error) {
	const query = `
	SELECT
		id,
		tutor_id,
		title,
		scheduled_at,
		duration_minutes,
		capacity,
		status,
		created_at,
		updated_at
	FROM study_sessions
	WHERE tutor_id = $1
	ORDER BY scheduled_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.StudySession
	for rows.Next() {
		var s models.StudySession
		if err := rows.Scan(
			&s.ID,
			&s.TutorID,
			&s.Title,
			&s.ScheduledAt,
			&s.DurationMinutes,
			&s.Capacity,
			&s.Status,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Update lifecycle status. Only scheduled sessions can move to
// completed or cancelled.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error {
	const query = `
	UPDATE study_sessions
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, query, status, id, models.SessionStatusScheduled)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
	}

	return nil
}

// UpdateCapacity changes the seat count. The session row is locked for
// the duration so the check against current attendance cannot race with
// a concurrent approval.
func (r *SessionRepository) UpdateCapacity(ctx context.Context, id uuid.UUID, capacity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const lockQuery = `
	SELECT status FROM study_sessions WHERE id = $1 FOR UPDATE
	`

	var status models.SessionStatus
	err = tx.QueryRowContext(ctx, lockQuery, id).Scan(&status)
	if err == sql.ErrNoRows {
		return apperrors.NewNotFound("session")
	}
	if err != nil {
		return err
	}
	if status != models.SessionStatusScheduled {
		return apperrors.NewConflict(apperrors.CodeSessionNotScheduled, "session is not scheduled")
	}

	const countQuery = `
	SELECT COUNT(*) FROM attendees WHERE session_id = $1
	`

	var attending int
	if err := tx.QueryRowContext(ctx, countQuery, id).Scan(&attending); err != nil {
		return err
	}
	if capacity < attending {
		return apperrors.NewConflict(
			apperrors.CodeCapacityBelowAttendees,
			"capacity cannot drop below current attendance",
		)
	}

	const updateQuery = `
	UPDATE study_sessions SET capacity = $1, updated_at = NOW() WHERE id = $2
	`

	if _, err := tx.ExecContext(ctx, updateQuery, capacity, id); err != nil {
		return err
	}

	return tx.Commit()
}
