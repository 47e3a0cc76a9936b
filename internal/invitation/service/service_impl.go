package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/clock"
	"github.com/heirloomlabs/heirloom/internal/config"
	"github.com/heirloomlabs/heirloom/internal/identity"
	"github.com/heirloomlabs/heirloom/internal/invitation/domain"
	"github.com/heirloomlabs/heirloom/internal/invitation/token"
	"github.com/heirloomlabs/heirloom/internal/notification"
	"github.com/heirloomlabs/heirloom/internal/permission"
	projectdomain "github.com/heirloomlabs/heirloom/internal/project/domain"
	walletdomain "github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"github.com/heirloomlabs/heirloom/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Cfg         config.Config
	Repo        domain.Repository
	ProjectRepo projectdomain.Repository
	WalletSvc   walletdomain.Service
	Sink        notification.Sink `optional:"true"`
	Clock       clock.Clock
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	cfg         config.Config
	repo        domain.Repository
	projectRepo projectdomain.Repository
	walletSvc   walletdomain.Service
	sink        notification.Sink
	clock       clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("invitation.service"),
		genID:       p.GenID,
		cfg:         p.Cfg,
		repo:        p.Repo,
		projectRepo: p.ProjectRepo,
		walletSvc:   p.WalletSvc,
		sink:        p.Sink,
		clock:       p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Invitation, error) {
	if req.InviterID == 0 {
		return nil, domain.ErrInvalidInviter
	}
	if req.ProjectID == 0 {
		return nil, domain.ErrInvalidProject
	}

	email := strings.ToLower(strings.TrimSpace(req.InviteeEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}

	resource, err := domain.SeatResource(req.Role)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindProject(ctx, s.db, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrInvalidProject
	}

	if err := s.authorizeInviter(ctx, project, req.InviterID); err != nil {
		return nil, err
	}

	// Seats are only checked here; consumption happens at Accept so an
	// unaccepted invitation burns nothing.
	wallet, err := s.walletSvc.GetOrInit(ctx, req.InviterID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance(resource) < 1 {
		return nil, domain.ErrInsufficientSeat
	}

	now := s.clock.Now()
	invitation := &domain.Invitation{
		ProjectID:    req.ProjectID,
		InviterID:    req.InviterID,
		InviteeEmail: email,
		Role:         req.Role,
		Status:       domain.StatusPending,
		ExpiresAt:    now.Add(s.cfg.InvitationTTL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Token collisions are vanishingly rare but the unique index makes
	// them loud; retry once with a fresh token.
	for attempt := 0; attempt < 2; attempt++ {
		invitation.ID = s.genID.Generate()
		invitation.Token, err = token.New()
		if err != nil {
			return nil, err
		}

		err = s.repo.Insert(ctx, s.db, invitation)
		if err == nil {
			return invitation, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
	}
	return nil, err
}

func (s *Service) authorizeInviter(ctx context.Context, project *projectdomain.Project, inviterID snowflake.ID) error {
	isOwner := project.OwnerID == inviterID

	role, err := s.projectRepo.FindActiveRole(ctx, s.db, project.ID, inviterID)
	if err != nil {
		return err
	}
	if role == nil && !isOwner {
		return domain.ErrNotInviter
	}

	baseRole := permission.RoleFacilitator
	if role != nil {
		baseRole = role.Role
	}
	if !permission.Permissions(baseRole, isOwner).CanInviteMembers {
		return domain.ErrNotInviter
	}
	return nil
}

func (s *Service) Accept(ctx context.Context, rawToken string, caller identity.Identity) (*domain.Acceptance, error) {
	if caller.UserID == 0 {
		return nil, domain.ErrInvalidInviter
	}

	invitation, err := s.resolve(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if invitation.Status.Terminal() {
		return nil, domain.ErrAlreadyUsed
	}

	now := s.clock.Now()
	if invitation.ExpiredAt(now) {
		// The lazy expiry transition commits on its own; the wallet is
		// untouched either way.
		if err := s.expire(ctx, invitation); err != nil {
			return nil, err
		}
		return nil, domain.ErrExpired
	}

	if !strings.EqualFold(strings.TrimSpace(caller.Email), invitation.InviteeEmail) {
		return nil, domain.ErrEmailMismatch
	}

	resource, err := domain.SeatResource(invitation.Role)
	if err != nil {
		return nil, err
	}

	projectID := invitation.ProjectID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The pending→accepted transition is the uniquely-successful
		// claim; every concurrent Accept but one fails here.
		claimed, err := s.repo.Transition(ctx, tx, invitation.ID, domain.StatusPending, domain.StatusAccepted, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrAlreadyUsed
		}

		member, err := s.projectRepo.HasActiveRole(ctx, tx, projectID, caller.UserID, invitation.Role)
		if err != nil {
			return err
		}
		if member {
			return domain.ErrAlreadyMember
		}

		// Seats come out of the inviter's wallet: they represent the
		// inviter's purchased capacity to host collaborators. The seat
		// may have been spent elsewhere since Create; that is an
		// expected outcome, not a bug.
		err = s.walletSvc.ConsumeInTx(ctx, tx, invitation.InviterID, resource, 1, &projectID, walletdomain.Metadata{
			InvitationID: invitation.ID.String(),
		})
		if err != nil {
			if errors.Is(err, walletdomain.ErrInsufficientBalance) {
				return domain.ErrInsufficientSeat
			}
			return err
		}

		return s.projectRepo.InsertRole(ctx, tx, &projectdomain.ProjectRole{
			ID:        s.genID.Generate(),
			ProjectID: projectID,
			UserID:    caller.UserID,
			Role:      invitation.Role,
			Status:    projectdomain.RoleActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyAccepted(ctx, invitation, caller.UserID)

	return &domain.Acceptance{
		ProjectID: projectID,
		Role:      invitation.Role,
	}, nil
}

func (s *Service) Decline(ctx context.Context, rawToken string, caller identity.Identity) error {
	invitation, err := s.resolve(ctx, rawToken)
	if err != nil {
		return err
	}

	if invitation.Status.Terminal() {
		return domain.ErrAlreadyUsed
	}

	now := s.clock.Now()
	if invitation.ExpiredAt(now) {
		if err := s.expire(ctx, invitation); err != nil {
			return err
		}
		return domain.ErrExpired
	}

	if !strings.EqualFold(strings.TrimSpace(caller.Email), invitation.InviteeEmail) {
		return domain.ErrEmailMismatch
	}

	applied, err := s.repo.Transition(ctx, s.db, invitation.ID, domain.StatusPending, domain.StatusDeclined, now)
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrAlreadyUsed
	}
	return nil
}

func (s *Service) Revoke(ctx context.Context, id snowflake.ID, callerID snowflake.ID) error {
	invitation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if invitation == nil {
		return domain.ErrNotFound
	}
	if invitation.InviterID != callerID {
		return domain.ErrNotInviter
	}

	if invitation.Status.Terminal() {
		return domain.ErrAlreadyUsed
	}

	applied, err := s.repo.Transition(ctx, s.db, invitation.ID, domain.StatusPending, domain.StatusRevoked, s.clock.Now())
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrAlreadyUsed
	}
	return nil
}

func (s *Service) ListByProject(ctx context.Context, projectID snowflake.ID, status domain.Status, limit int) ([]*domain.Invitation, error) {
	if projectID == 0 {
		return nil, domain.ErrInvalidProject
	}
	return s.repo.ListByProject(ctx, s.db, projectID, status, limit)
}

func (s *Service) ExpireOverdue(ctx context.Context, limit int) (int64, error) {
	return s.repo.ExpireOverdue(ctx, s.db, s.clock.Now(), limit)
}

// resolve canonicalizes a transport-damaged token and loads the invitation.
func (s *Service) resolve(ctx context.Context, rawToken string) (*domain.Invitation, error) {
	canonical, err := token.Resolve(ctx, rawToken, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.TokenExists(ctx, s.db, candidate)
	})
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	invitation, err := s.repo.FindByToken(ctx, s.db, canonical)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, domain.ErrNotFound
	}
	return invitation, nil
}

func (s *Service) expire(ctx context.Context, invitation *domain.Invitation) error {
	_, err := s.repo.Transition(ctx, s.db, invitation.ID, domain.StatusPending, domain.StatusExpired, s.clock.Now())
	return err
}

// notifyAccepted is fire-and-forget toward the inviter; delivery failures
// never unwind an accepted invitation.
func (s *Service) notifyAccepted(ctx context.Context, invitation *domain.Invitation, inviteeID snowflake.ID) {
	if s.sink == nil {
		return
	}

	err := s.sink.Publish(ctx, notification.Event{
		RecipientID: invitation.InviterID,
		Type:        notification.TypeInvitationAccepted,
		ProjectID:   invitation.ProjectID,
		ActorID:     inviteeID,
	})
	if err != nil {
		s.log.Warn("failed to publish invitation_accepted event",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err),
		)
	}
}
