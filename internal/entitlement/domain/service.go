package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/identity"
	invitationdomain "github.com/heirloomlabs/heirloom/internal/invitation/domain"
	"github.com/heirloomlabs/heirloom/internal/permission"
	projectdomain "github.com/heirloomlabs/heirloom/internal/project/domain"
	walletdomain "github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
)

// Service is the façade HTTP handlers consume. Pure composition over the
// wallet ledger, the invitation state machine, projects and the permission
// matrix; errors are translated into the package taxonomy.
type Service interface {
	GetWallet(ctx context.Context, userID snowflake.ID) (*walletdomain.Wallet, error)

	ListSeatTransactions(ctx context.Context, userID snowflake.ID, page pagination.Pagination) ([]*walletdomain.SeatTransaction, pagination.PageInfo, error)

	CheckSeatAvailable(ctx context.Context, userID snowflake.ID, role permission.Role) (bool, error)

	CreateProject(ctx context.Context, ownerID snowflake.ID, name string) (*projectdomain.Project, error)

	CreateInvitation(ctx context.Context, inviterID, projectID snowflake.ID, inviteeEmail string, role permission.Role) (*invitationdomain.Invitation, error)

	AcceptInvitation(ctx context.Context, rawToken string, caller identity.Identity) (*invitationdomain.Acceptance, error)

	DeclineInvitation(ctx context.Context, rawToken string, caller identity.Identity) error

	RevokeInvitation(ctx context.Context, invitationID, callerID snowflake.ID) error

	ListProjectInvitations(ctx context.Context, projectID, callerID snowflake.ID, status invitationdomain.Status, limit int) ([]*invitationdomain.Invitation, error)

	// Permissions resolves the caller's membership and applies the
	// capability matrix, owner overlay included.
	Permissions(ctx context.Context, projectID, userID snowflake.ID) (permission.Capabilities, error)
}
