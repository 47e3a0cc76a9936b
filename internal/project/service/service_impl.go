package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/heirloomlabs/heirloom/internal/clock"
	"github.com/heirloomlabs/heirloom/internal/permission"
	"github.com/heirloomlabs/heirloom/internal/project/domain"
	walletdomain "github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	WalletSvc walletdomain.Service
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	walletSvc walletdomain.Service
	clock     clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("project.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		walletSvc: p.WalletSvc,
		clock:     p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, ownerID snowflake.ID, name string) (*domain.Project, error) {
	if ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	projectID := s.genID.Generate()
	project := &domain.Project{
		ID:        projectID,
		OwnerID:   ownerID,
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.walletSvc.ConsumeInTx(ctx, tx, ownerID, walletdomain.ResourceProjectVoucher, 1, &projectID, walletdomain.Metadata{
			Note: "project_created",
		})
		if err != nil {
			if errors.Is(err, walletdomain.ErrInsufficientBalance) {
				return domain.ErrNoVouchers
			}
			return err
		}

		if err := s.repo.InsertProject(ctx, tx, project); err != nil {
			return err
		}

		return s.repo.InsertRole(ctx, tx, &domain.ProjectRole{
			ID:        s.genID.Generate(),
			ProjectID: projectID,
			UserID:    ownerID,
			Role:      permission.RoleFacilitator,
			Status:    domain.RoleActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project created",
		zap.String("project_id", projectID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return project, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Project, error) {
	if id == 0 {
		return nil, domain.ErrNotFound
	}

	project, err := s.repo.FindProject(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func (s *Service) MembershipFor(ctx context.Context, projectID, userID snowflake.ID) (*domain.Membership, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	role, err := s.repo.FindActiveRole(ctx, s.db, projectID, userID)
	if err != nil {
		return nil, err
	}

	isOwner := project.OwnerID == userID
	if role == nil {
		if !isOwner {
			return nil, domain.ErrNotMember
		}
		// Owner whose role row was removed still administers the project.
		return &domain.Membership{Role: permission.RoleFacilitator, IsOwner: true}, nil
	}

	return &domain.Membership{Role: role.Role, IsOwner: isOwner}, nil
}
