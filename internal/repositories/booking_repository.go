package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Shivesh4/MindPath/internal/apperrors"
	"github.com/Shivesh4/MindPath/internal/models"
	"github.com/Shivesh4/MindPath/internal/services"
)

// BookingRepository persists join requests and the attendee ledger. It
// implements services.BookingStore; the transactional slice hands out a
// bookingTx bound to one *sql.Tx.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// InTx runs fn inside a single transaction, committing only if fn
// returns nil.
func (r *BookingRepository) InTx(ctx context.Context, fn func(tx services.BookingTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// FindActiveRequest returns the pending or approved request for the
// pair, or nil. The partial unique index guarantees at most one exists.
func (r *BookingRepository) FindActiveRequest(ctx context.Context, sessionID, studentID uuid.UUID) (*models.JoinRequest, error) {
	const query = `
	SELECT id, session_id, student_id, status, created_at, decided_at
	FROM join_requests
	WHERE session_id = $1 AND student_id = $2 AND status IN ($3, $4)
	`

	var request models.JoinRequest
	err := r.db.QueryRowContext(
		ctx, query,
		sessionID, studentID,
		models.JoinRequestStatusPending, models.JoinRequestStatusApproved,
	).Scan(
		&request.ID,
		&request.SessionID,
		&request.StudentID,
		&request.Status,
		&request.CreatedAt,
		&request.DecidedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// CreateRequest inserts a pending request. A unique violation means a
// concurrent request won the race for the pair.
func (r *BookingRepository) CreateRequest(ctx context.Context, request *models.JoinRequest) error {
	const query = `
	INSERT INTO join_requests (id, session_id, student_id, status, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		request.ID,
		request.SessionID,
		request.StudentID,
		request.Status,
	).Scan(&request.CreatedAt)

	if isUniqueViolation(err) {
		return apperrors.NewConflict(apperrors.CodeDuplicateRequest, "a pending request already exists")
	}

	return err
}

// GetRequest loads a request by ID
func (r *BookingRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx, getRequestQuery, requestID))
}

// AttendeeExists checks for a ledger row
func (r *BookingRepository) AttendeeExists(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM attendees WHERE session_id = $1 AND student_id = $2
	)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, sessionID, studentID).Scan(&exists)
	return exists, err
}

// ListAttendees returns the ledger for a session, oldest seat first
func (r *BookingRepository) ListAttendees(ctx context.Context, sessionID uuid.UUID) ([]models.Attendee, error) {
	const query = `
	SELECT session_id, student_id, created_at
	FROM attendees
	WHERE session_id = $1
	ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.SessionID, &a.StudentID, &a.CreatedAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}

	return attendees, rows.Err()
}

// ListRequestsForTutor returns requests targeting the tutor's sessions,
// newest first, optionally filtered by status.
func (r *BookingRepository) ListRequestsForTutor(ctx context.Context, tutorID uuid.UUID, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	const query = `
	SELECT r.id, r.session_id, r.student_id, r.status, r.created_at, r.decided_at
	FROM join_requests r
	JOIN study_sessions s ON s.id = r.session_id
	WHERE s.tutor_id = $1 AND ($2 = '' OR r.status = $2)
	ORDER BY r.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tutorID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var req models.JoinRequest
		if err := rows.Scan(
			&req.ID,
			&req.SessionID,
			&req.StudentID,
			&req.Status,
			&req.CreatedAt,
			&req.DecidedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

const getRequestQuery = `
SELECT id, session_id, student_id, status, created_at, decided_at
FROM join_requests
WHERE id = $1
`

func scanRequest(row *sql.Row) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := row.Scan(
		&request.ID,
		&request.SessionID,
		&request.StudentID,
		&request.Status,
		&request.CreatedAt,
		&request.DecidedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFound("join request")
	}
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// bookingTx is the transactional view used by approve, deny and leave.
type bookingTx struct {
	tx *sql.Tx
}

// GetSessionForUpdate locks the session row until the transaction ends.
// Every capacity-affecting path takes this lock first, which linearizes
// concurrent approvals for the same session.
func (t *bookingTx) GetSessionForUpdate(ctx context.Context, sessionID uuid.UUID) (*models.StudySession, error) {
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
	FOR UPDATE
	`

	var session models.StudySession
	err := t.tx.QueryRowContext(ctx, query, sessionID).Scan(
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

func (t *bookingTx) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error) {
	return scanRequest(t.tx.QueryRowContext(ctx, getRequestQuery, requestID))
}

func (t *bookingTx) CountAttendees(ctx context.Context, sessionID uuid.UUID) (int, error) {
	const query = `
	SELECT COUNT(*) FROM attendees WHERE session_id = $1
	`

	var count int
	err := t.tx.QueryRowContext(ctx, query, sessionID).Scan(&count)
	return count, err
}

func (t *bookingTx) InsertAttendee(ctx context.Context, sessionID, studentID uuid.UUID) error {
	const query = `
	INSERT INTO attendees (session_id, student_id, created_at)
	VALUES ($1, $2, NOW())
	`

	_, err := t.tx.ExecContext(ctx, query, sessionID, studentID)
	if isUniqueViolation(err) {
		return apperrors.NewConflict(apperrors.CodeAlreadyAttending, "already attending this session")
	}
	return err
}

func (t *bookingTx) SetRequestStatus(ctx context.Context, requestID uuid.UUID, status models.JoinRequestStatus, decidedAt time.Time) error {
	const query = `
	UPDATE join_requests
	SET status = $1, decided_at = $2
	WHERE id = $3
	`

	_, err := t.tx.ExecContext(ctx, query, status, decidedAt, requestID)
	return err
}

func (t *bookingTx) DeleteAttendee(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error) {
	const query = `
	DELETE FROM attendees WHERE session_id = $1 AND student_id = $2
	`

	res, err := t.tx.ExecContext(ctx, query, sessionID, studentID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// DeleteActiveRequest removes the pair's pending or approved request
// row, clearing the way for a later re-request.
func (t *bookingTx) DeleteActiveRequest(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error) {
	const query = `
	DELETE FROM join_requests
	WHERE session_id = $1 AND student_id = $2 AND status IN ($3, $4)
	`

	res, err := t.tx.ExecContext(
		ctx, query,
		sessionID, studentID,
		models.JoinRequestStatusPending, models.JoinRequestStatusApproved,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}
