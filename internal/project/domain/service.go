package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create spends one project voucher from the owner's wallet and
	// creates the project plus the owner's active role, atomically.
	Create(ctx context.Context, ownerID snowflake.ID, name string) (*Project, error)

	Get(ctx context.Context, id snowflake.ID) (*Project, error)

	// MembershipFor resolves the caller's standing on a project:
	// ErrNotMember when there is no active role and the caller is not the
	// owner.
	MembershipFor(ctx context.Context, projectID, userID snowflake.ID) (*Membership, error)
}
