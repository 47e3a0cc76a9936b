package domain

import "errors"

// Error taxonomy surfaced to HTTP handlers. Every kind is recoverable to
// the caller; storage failures are wrapped as ErrStorage and logged with
// context internally.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrInvitationNotFound    = errors.New("invitation_not_found")
	ErrInvitationExpired     = errors.New("invitation_expired")
	ErrInvitationAlreadyUsed = errors.New("invitation_already_used")
	ErrEmailMismatch         = errors.New("email_mismatch")
	ErrAlreadyMember         = errors.New("already_member")
	ErrInsufficientSeats     = errors.New("insufficient_seats")
	ErrProjectNotFound       = errors.New("project_not_found")
	ErrInvalidRequest        = errors.New("invalid_request")
	ErrStorage               = errors.New("storage_error")
)
