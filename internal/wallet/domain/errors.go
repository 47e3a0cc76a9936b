package domain

import "errors"

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidResource     = errors.New("invalid_resource")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)
