package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/config"
	"github.com/heirloomlabs/heirloom/internal/entitlement/domain"
	"github.com/heirloomlabs/heirloom/internal/identity"
	invitationdomain "github.com/heirloomlabs/heirloom/internal/invitation/domain"
	"github.com/heirloomlabs/heirloom/internal/metrics"
	"github.com/heirloomlabs/heirloom/internal/permission"
	projectdomain "github.com/heirloomlabs/heirloom/internal/project/domain"
	walletdomain "github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	WalletSvc     walletdomain.Service
	InvitationSvc invitationdomain.Service
	ProjectSvc    projectdomain.Service
	Entitlements  *config.EntitlementConfigHolder
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	walletSvc     walletdomain.Service
	invitationSvc invitationdomain.Service
	projectSvc    projectdomain.Service
	entitlements  *config.EntitlementConfigHolder
	metrics       *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("entitlement.service"),
		walletSvc:     p.WalletSvc,
		invitationSvc: p.InvitationSvc,
		projectSvc:    p.ProjectSvc,
		entitlements:  p.Entitlements,
		metrics:       p.Metrics,
	}
}

func (s *Service) GetWallet(ctx context.Context, userID snowflake.ID) (*walletdomain.Wallet, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}

	wallet, err := s.walletSvc.GetOrInit(ctx, userID)
	if err != nil {
		return nil, s.storage("get wallet", err)
	}

	grant := s.entitlements.Get().StarterGrant
	if grant.Enabled && wallet.AllZero() {
		applied, err := s.walletSvc.ConditionalBootstrapGrant(ctx, userID, grant.ProjectVouchers, grant.FacilitatorSeats, grant.StorytellerSeats)
		if err != nil {
			return nil, s.storage("bootstrap grant", err)
		}
		if applied {
			s.metrics.RecordStarterGrant()
			wallet, err = s.walletSvc.GetOrInit(ctx, userID)
			if err != nil {
				return nil, s.storage("reload wallet", err)
			}
		}
	}

	return wallet, nil
}

func (s *Service) ListSeatTransactions(ctx context.Context, userID snowflake.ID, page pagination.Pagination) ([]*walletdomain.SeatTransaction, pagination.PageInfo, error) {
	if userID == 0 {
		return nil, pagination.PageInfo{}, domain.ErrUnauthorized
	}

	txns, info, err := s.walletSvc.ListTransactions(ctx, userID, page)
	if err != nil {
		return nil, pagination.PageInfo{}, s.translate("list seat transactions", err)
	}
	return txns, info, nil
}

func (s *Service) CheckSeatAvailable(ctx context.Context, userID snowflake.ID, role permission.Role) (bool, error) {
	if userID == 0 {
		return false, domain.ErrUnauthorized
	}

	resource, err := invitationdomain.SeatResource(role)
	if err != nil {
		return false, domain.ErrInvalidRequest
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return false, err
	}
	return wallet.Balance(resource) >= 1, nil
}

func (s *Service) CreateProject(ctx context.Context, ownerID snowflake.ID, name string) (*projectdomain.Project, error) {
	if ownerID == 0 {
		return nil, domain.ErrUnauthorized
	}

	project, err := s.projectSvc.Create(ctx, ownerID, name)
	if err != nil {
		return nil, s.translate("create project", err)
	}

	s.metrics.RecordConsume(string(walletdomain.ResourceProjectVoucher))
	return project, nil
}

func (s *Service) CreateInvitation(ctx context.Context, inviterID, projectID snowflake.ID, inviteeEmail string, role permission.Role) (*invitationdomain.Invitation, error) {
	if inviterID == 0 {
		return nil, domain.ErrUnauthorized
	}

	invitation, err := s.invitationSvc.Create(ctx, invitationdomain.CreateRequest{
		ProjectID:    projectID,
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		Role:         role,
	})
	if err != nil {
		return nil, s.translate("create invitation", err)
	}
	return invitation, nil
}

func (s *Service) AcceptInvitation(ctx context.Context, rawToken string, caller identity.Identity) (*invitationdomain.Acceptance, error) {
	if caller.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}

	acceptance, err := s.invitationSvc.Accept(ctx, rawToken, caller)
	if err != nil {
		translated := s.translate("accept invitation", err)
		s.metrics.RecordAccept(resultLabel(translated))
		return nil, translated
	}

	s.metrics.RecordAccept("accepted")
	if resource, rerr := invitationdomain.SeatResource(acceptance.Role); rerr == nil {
		s.metrics.RecordConsume(string(resource))
	}
	return acceptance, nil
}

func (s *Service) DeclineInvitation(ctx context.Context, rawToken string, caller identity.Identity) error {
	if caller.UserID == 0 {
		return domain.ErrUnauthorized
	}

	if err := s.invitationSvc.Decline(ctx, rawToken, caller); err != nil {
		return s.translate("decline invitation", err)
	}
	return nil
}

func (s *Service) RevokeInvitation(ctx context.Context, invitationID, callerID snowflake.ID) error {
	if callerID == 0 {
		return domain.ErrUnauthorized
	}

	if err := s.invitationSvc.Revoke(ctx, invitationID, callerID); err != nil {
		return s.translate("revoke invitation", err)
	}
	return nil
}

func (s *Service) ListProjectInvitations(ctx context.Context, projectID, callerID snowflake.ID, status invitationdomain.Status, limit int) ([]*invitationdomain.Invitation, error) {
	caps, err := s.Permissions(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}
	if !caps.CanInviteMembers {
		return nil, domain.ErrForbidden
	}

	invitations, err := s.invitationSvc.ListByProject(ctx, projectID, status, limit)
	if err != nil {
		return nil, s.translate("list invitations", err)
	}
	return invitations, nil
}

func (s *Service) Permissions(ctx context.Context, projectID, userID snowflake.ID) (permission.Capabilities, error) {
	if userID == 0 {
		return permission.Capabilities{}, domain.ErrUnauthorized
	}

	membership, err := s.projectSvc.MembershipFor(ctx, projectID, userID)
	if err != nil {
		return permission.Capabilities{}, s.translate("resolve membership", err)
	}

	return permission.Permissions(membership.Role, membership.IsOwner), nil
}

// translate maps internal error kinds onto the façade taxonomy.
// Validation-class errors pass through with their specific kind; anything
// unrecognized is a storage failure, logged here and surfaced opaquely.
func (s *Service) translate(op string, err error) error {
	switch {
	case errors.Is(err, invitationdomain.ErrNotFound):
		return domain.ErrInvitationNotFound
	case errors.Is(err, invitationdomain.ErrExpired):
		return domain.ErrInvitationExpired
	case errors.Is(err, invitationdomain.ErrAlreadyUsed):
		return domain.ErrInvitationAlreadyUsed
	case errors.Is(err, invitationdomain.ErrEmailMismatch):
		return domain.ErrEmailMismatch
	case errors.Is(err, invitationdomain.ErrAlreadyMember):
		return domain.ErrAlreadyMember
	case errors.Is(err, invitationdomain.ErrInsufficientSeat),
		errors.Is(err, walletdomain.ErrInsufficientBalance),
		errors.Is(err, projectdomain.ErrNoVouchers):
		return domain.ErrInsufficientSeats
	case errors.Is(err, invitationdomain.ErrNotInviter),
		errors.Is(err, projectdomain.ErrNotMember):
		return domain.ErrForbidden
	case errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, invitationdomain.ErrInvalidProject):
		return domain.ErrProjectNotFound
	case errors.Is(err, invitationdomain.ErrInvalidEmail),
		errors.Is(err, invitationdomain.ErrInvalidRole),
		errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, walletdomain.ErrInvalidResource),
		errors.Is(err, walletdomain.ErrInvalidAmount),
		errors.Is(err, walletdomain.ErrInvalidPageToken):
		return domain.ErrInvalidRequest
	default:
		return s.storage(op, err)
	}
}

func (s *Service) storage(op string, err error) error {
	s.log.Error("storage failure", zap.String("op", op), zap.Error(err))
	return domain.ErrStorage
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrInvitationNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvitationExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvitationAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrEmailMismatch):
		return "email_mismatch"
	case errors.Is(err, domain.ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, domain.ErrInsufficientSeats):
		return "insufficient_seats"
	default:
		return "error"
	}
}
