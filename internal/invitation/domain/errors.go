package domain

import "errors"

var (
	ErrInvalidProject   = errors.New("invalid_project")
	ErrInvalidInviter   = errors.New("invalid_inviter")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidRole      = errors.New("invalid_role")
	ErrNotFound         = errors.New("invitation_not_found")
	ErrExpired          = errors.New("invitation_expired")
	ErrAlreadyUsed      = errors.New("invitation_already_used")
	ErrEmailMismatch    = errors.New("email_mismatch")
	ErrAlreadyMember    = errors.New("already_member")
	ErrInsufficientSeat = errors.New("insufficient_seats")
	ErrNotInviter       = errors.New("not_inviter")
)
