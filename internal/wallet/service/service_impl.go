package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/heirloomlabs/heirloom/internal/clock"
	"github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("wallet.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) GetOrInit(ctx context.Context, userID snowflake.ID) (*domain.Wallet, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	now := s.clock.Now()
	if err := s.repo.EnsureWallet(ctx, s.db, userID, now); err != nil {
		return nil, err
	}

	wallet, err := s.repo.GetWallet(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, errors.New("wallet missing after init")
	}
	return wallet, nil
}

func (s *Service) Consume(ctx context.Context, userID snowflake.ID, resource domain.ResourceType, amount uint, relatedProjectID *snowflake.ID, meta domain.Metadata) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.ConsumeInTx(ctx, tx, userID, resource, amount, relatedProjectID, meta)
	})
}

func (s *Service) ConsumeInTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, resource domain.ResourceType, amount uint, relatedProjectID *snowflake.ID, meta domain.Metadata) error {
	if userID == 0 {
		return domain.ErrInvalidUser
	}
	if !resource.Valid() {
		return domain.ErrInvalidResource
	}
	if amount == 0 {
		return domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	if err := s.repo.EnsureWallet(ctx, tx, userID, now); err != nil {
		return err
	}

	ok, err := s.repo.ConsumeBalance(ctx, tx, userID, resource, amount, now)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientBalance
	}

	return s.appendTransaction(ctx, tx, userID, domain.TransactionConsume, resource, amount, relatedProjectID, meta, now)
}

func (s *Service) Grant(ctx context.Context, userID snowflake.ID, resource domain.ResourceType, amount uint, relatedProjectID *snowflake.ID, meta domain.Metadata) (*domain.Wallet, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if !resource.Valid() {
		return nil, domain.ErrInvalidResource
	}
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		if err := s.repo.EnsureWallet(ctx, tx, userID, now); err != nil {
			return err
		}
		if err := s.repo.GrantBalance(ctx, tx, userID, resource, amount, now); err != nil {
			return err
		}
		return s.appendTransaction(ctx, tx, userID, domain.TransactionGrant, resource, amount, relatedProjectID, meta, now)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetWallet(ctx, s.db, userID)
}

// ConditionalBootstrapGrant treats "all three counters are exactly zero" as
// a proxy for "never initialized". The predicate is ambiguous on purpose: a
// user who legitimately spent down to zero also matches and would be
// re-granted on the next read. Pending product clarification this mirrors
// the launch behavior rather than silently resolving it.
func (s *Service) ConditionalBootstrapGrant(ctx context.Context, userID snowflake.ID, vouchers, facilitatorSeats, storytellerSeats uint) (bool, error) {
	if userID == 0 {
		return false, domain.ErrInvalidUser
	}
	if vouchers == 0 && facilitatorSeats == 0 && storytellerSeats == 0 {
		return false, nil
	}

	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		if err := s.repo.EnsureWallet(ctx, tx, userID, now); err != nil {
			return err
		}

		ok, err := s.repo.ApplyStarterGrant(ctx, tx, userID, vouchers, facilitatorSeats, storytellerSeats, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true

		meta := domain.Metadata{GrantSource: "starter_allotment"}
		grants := []struct {
			resource domain.ResourceType
			amount   uint
		}{
			{domain.ResourceProjectVoucher, vouchers},
			{domain.ResourceFacilitatorSeat, facilitatorSeats},
			{domain.ResourceStorytellerSeat, storytellerSeats},
		}
		for _, grant := range grants {
			if grant.amount == 0 {
				continue
			}
			if err := s.appendTransaction(ctx, tx, userID, domain.TransactionGrant, grant.resource, grant.amount, nil, meta, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		s.log.Info("starter allotment applied",
			zap.String("user_id", userID.String()),
			zap.Uint("project_vouchers", vouchers),
			zap.Uint("facilitator_seats", facilitatorSeats),
			zap.Uint("storyteller_seats", storytellerSeats),
		)
	}
	return applied, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID snowflake.ID, page pagination.Pagination) ([]*domain.SeatTransaction, pagination.PageInfo, error) {
	if userID == 0 {
		return nil, pagination.PageInfo{}, domain.ErrInvalidUser
	}

	limit := page.PageSize
	if limit <= 0 || limit > 250 {
		limit = 50
	}

	var cursor *pagination.Cursor
	if page.PageToken != "" {
		decoded, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, pagination.PageInfo{}, domain.ErrInvalidPageToken
		}
		cursor = decoded
	}

	// Fetch one extra row to learn whether another page exists.
	txns, err := s.repo.ListTransactions(ctx, s.db, userID, cursor, limit+1)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	info := pagination.PageInfo{}
	if len(txns) > limit {
		txns = txns[:limit]
		info.HasMore = true
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: txns[len(txns)-1].ID.String()})
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		info.NextPageToken = token
	}
	return txns, info, nil
}

func (s *Service) appendTransaction(ctx context.Context, tx *gorm.DB, userID snowflake.ID, txnType domain.TransactionType, resource domain.ResourceType, amount uint, relatedProjectID *snowflake.ID, meta domain.Metadata, now time.Time) error {
	if meta.Reference == "" {
		meta.Reference = uuid.NewString()
	}

	return s.repo.InsertTransaction(ctx, tx, &domain.SeatTransaction{
		ID:               s.genID.Generate(),
		UserID:           userID,
		TransactionType:  txnType,
		ResourceType:     resource,
		Amount:           amount,
		RelatedProjectID: relatedProjectID,
		Metadata:         meta.JSONMap(),
		CreatedAt:        now,
	})
}
