package domain

import "errors"

var (
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidName   = errors.New("invalid_name")
	ErrNotFound      = errors.New("project_not_found")
	ErrNotMember     = errors.New("not_member")
	ErrNoVouchers    = errors.New("insufficient_project_vouchers")
	ErrDuplicateRole = errors.New("duplicate_active_role")
)
