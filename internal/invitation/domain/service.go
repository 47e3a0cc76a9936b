package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/identity"
	"github.com/heirloomlabs/heirloom/internal/permission"
)

type CreateRequest struct {
	ProjectID    snowflake.ID
	InviterID    snowflake.ID
	InviteeEmail string
	Role         permission.Role
}

// Service owns the invitation lifecycle. Invitation and project-role rows
// are mutated only through it.
type Service interface {
	// Create issues a pending invitation after verifying the inviter holds
	// at least one seat of the requested kind. The seat is not consumed
	// until Accept, so an invitation that is never accepted burns nothing.
	Create(ctx context.Context, req CreateRequest) (*Invitation, error)

	// Accept normalizes rawToken, then runs the single atomic transition
	// from pending to accepted: membership created, inviter seat consumed,
	// ledger entry appended. Exactly one concurrent caller succeeds.
	Accept(ctx context.Context, rawToken string, caller identity.Identity) (*Acceptance, error)

	// Decline is the invitee's terminal rejection; no wallet interaction.
	Decline(ctx context.Context, rawToken string, caller identity.Identity) error

	// Revoke is the inviter's terminal withdrawal; no wallet interaction.
	Revoke(ctx context.Context, id snowflake.ID, callerID snowflake.ID) error

	ListByProject(ctx context.Context, projectID snowflake.ID, status Status, limit int) ([]*Invitation, error)

	// ExpireOverdue batch-expires overdue pending invitations. Accept does
	// not depend on it; expiry is re-checked at transaction time.
	ExpireOverdue(ctx context.Context, limit int) (int64, error)
}
