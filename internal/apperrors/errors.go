package apperrors

import "errors"

// Conflict codes returned to clients alongside a 409. These are part of the
// API contract; the frontend branches on them.
const (
	CodeDuplicateRequest       = "duplicate-request"
	CodeAlreadyApproved        = "already-approved"
	CodeAlreadyAttending       = "already-attending"
	CodeSessionFull            = "session-full"
	CodeSessionNotScheduled    = "session-not-scheduled"
	CodeCapacityBelowAttendees = "capacity-below-attendance"
)

// ValidationError means the input was malformed. Maps to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidation(msg string) error { return &ValidationError{Msg: msg} }

// NotFoundError means the referenced resource does not exist. Maps to 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFound(resource string) error { return &NotFoundError{Resource: resource} }

// PermissionError means the caller is authenticated but not allowed. Maps to 403.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

func NewPermission(msg string) error { return &PermissionError{Msg: msg} }

// ConflictError means the operation violates the booking state machine or
// the capacity invariant. Maps to 409 with a machine-readable code.
type ConflictError struct {
	Code string
	Msg  string
}

func (e *ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Code
}

func NewConflict(code, msg string) error { return &ConflictError{Code: code, Msg: msg} }

// AuthError means the credential is missing, invalid or expired. Maps to 401.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

func NewAuth(msg string) error { return &AuthError{Msg: msg} }

// IsConflict reports whether err is a ConflictError with the given code.
func IsConflict(err error, code string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Code == code
}
