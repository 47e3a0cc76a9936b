package identity

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrMissingCredential = errors.New("missing_credential")
	ErrInvalidCredential = errors.New("invalid_credential")
)

// Identity is a resolved caller: a stable user id plus the email the
// provider has verified for that user.
type Identity struct {
	UserID snowflake.ID
	Email  string
}

// Provider resolves a bearer credential to an Identity. Credential issuance
// and refresh live outside this service.
type Provider interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}
