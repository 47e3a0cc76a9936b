package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/heirloomlabs/heirloom/internal/clock"
	"github.com/heirloomlabs/heirloom/internal/config"
	"github.com/heirloomlabs/heirloom/internal/entitlement/domain"
	"github.com/heirloomlabs/heirloom/internal/identity"
	invitationdomain "github.com/heirloomlabs/heirloom/internal/invitation/domain"
	invitationrepo "github.com/heirloomlabs/heirloom/internal/invitation/repository"
	invitationservice "github.com/heirloomlabs/heirloom/internal/invitation/service"
	"github.com/heirloomlabs/heirloom/internal/permission"
	projectdomain "github.com/heirloomlabs/heirloom/internal/project/domain"
	projectrepo "github.com/heirloomlabs/heirloom/internal/project/repository"
	projectservice "github.com/heirloomlabs/heirloom/internal/project/service"
	walletdomain "github.com/heirloomlabs/heirloom/internal/wallet/domain"
	walletrepo "github.com/heirloomlabs/heirloom/internal/wallet/repository"
	walletservice "github.com/heirloomlabs/heirloom/internal/wallet/service"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newFacade(t *testing.T, grant config.StarterGrant) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&walletdomain.Wallet{},
		&walletdomain.SeatTransaction{},
		&projectdomain.Project{},
		&projectdomain.ProjectRole{},
		&invitationdomain.Invitation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	walletSvc := walletservice.NewService(walletservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  walletrepo.Provide(),
		Clock: fake,
	})
	projectSvc := projectservice.NewService(projectservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      projectrepo.Provide(),
		WalletSvc: walletSvc,
		Clock:     fake,
	})
	invitationSvc := invitationservice.NewService(invitationservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Cfg:         config.Config{InvitationTTL: 72 * time.Hour},
		Repo:        invitationrepo.Provide(),
		ProjectRepo: projectrepo.Provide(),
		WalletSvc:   walletSvc,
		Clock:       fake,
	})

	return NewService(Params{
		Log:           log,
		WalletSvc:     walletSvc,
		InvitationSvc: invitationSvc,
		ProjectSvc:    projectSvc,
		Entitlements:  config.NewStaticEntitlementConfigHolder(config.EntitlementConfig{StarterGrant: grant}),
	})
}

func starterGrant() config.StarterGrant {
	return config.StarterGrant{
		Enabled:          true,
		ProjectVouchers:  1,
		FacilitatorSeats: 1,
		StorytellerSeats: 2,
	}
}

func TestGetWalletAppliesStarterGrant(t *testing.T) {
	svc := newFacade(t, starterGrant())
	ctx := context.Background()

	wallet, err := svc.GetWallet(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, uint(1), wallet.ProjectVouchers)
	assert.Equal(t, uint(1), wallet.FacilitatorSeats)
	assert.Equal(t, uint(2), wallet.StorytellerSeats)

	txns, _, err := svc.ListSeatTransactions(ctx, 1001, pagination.Pagination{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, txns, 3)
}

func TestGetWalletStarterGrantDisabled(t *testing.T) {
	svc := newFacade(t, config.StarterGrant{Enabled: false})
	ctx := context.Background()

	wallet, err := svc.GetWallet(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, wallet.AllZero())
}

func TestFullOnboardingFlow(t *testing.T) {
	svc := newFacade(t, starterGrant())
	ctx := context.Background()
	owner := snowflake.ID(1001)
	invitee := snowflake.ID(2002)

	// First wallet read seeds the starter allotment.
	_, err := svc.GetWallet(ctx, owner)
	require.NoError(t, err)

	project, err := svc.CreateProject(ctx, owner, "The Nguyens")
	require.NoError(t, err)

	available, err := svc.CheckSeatAvailable(ctx, owner, permission.RoleStoryteller)
	require.NoError(t, err)
	assert.True(t, available)

	invitation, err := svc.CreateInvitation(ctx, owner, project.ID, "cousin@example.com", permission.RoleStoryteller)
	require.NoError(t, err)

	acceptance, err := svc.AcceptInvitation(ctx, invitation.Token, identity.Identity{UserID: invitee, Email: "cousin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, acceptance.ProjectID)

	caps, err := svc.Permissions(ctx, project.ID, invitee)
	require.NoError(t, err)
	assert.True(t, caps.CanCreateStories)
	assert.False(t, caps.CanInviteMembers)

	ownerCaps, err := svc.Permissions(ctx, project.ID, owner)
	require.NoError(t, err)
	assert.True(t, ownerCaps.CanDeleteProject)
	assert.False(t, ownerCaps.CanCreateStories)

	wallet, err := svc.GetWallet(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint(0), wallet.ProjectVouchers)
	assert.Equal(t, uint(1), wallet.StorytellerSeats)
}

func TestErrorTranslation(t *testing.T) {
	svc := newFacade(t, starterGrant())
	ctx := context.Background()
	owner := snowflake.ID(1001)

	_, err := svc.GetWallet(ctx, owner)
	require.NoError(t, err)
	project, err := svc.CreateProject(ctx, owner, "The Nguyens")
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, "no-such-token", identity.Identity{UserID: 2002, Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)

	_, err = svc.CreateInvitation(ctx, owner, project.ID, "not-an-email", permission.RoleStoryteller)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.CreateInvitation(ctx, owner, project.ID, "a@example.com", permission.Role("viewer"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.CreateInvitation(ctx, snowflake.ID(4242), project.ID, "a@example.com", permission.RoleStoryteller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Permissions(ctx, snowflake.ID(777), owner)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = svc.GetWallet(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListInvitationsRequiresInvitePermission(t *testing.T) {
	svc := newFacade(t, starterGrant())
	ctx := context.Background()
	owner := snowflake.ID(1001)
	invitee := snowflake.ID(2002)

	_, err := svc.GetWallet(ctx, owner)
	require.NoError(t, err)
	project, err := svc.CreateProject(ctx, owner, "The Nguyens")
	require.NoError(t, err)

	invitation, err := svc.CreateInvitation(ctx, owner, project.ID, "cousin@example.com", permission.RoleStoryteller)
	require.NoError(t, err)
	_, err = svc.AcceptInvitation(ctx, invitation.Token, identity.Identity{UserID: invitee, Email: "cousin@example.com"})
	require.NoError(t, err)

	listed, err := svc.ListProjectInvitations(ctx, project.ID, owner, "", 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// Storytellers cannot enumerate invitations.
	_, err = svc.ListProjectInvitations(ctx, project.ID, invitee, "", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
