package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// balanceColumn whitelists the counter column for a resource type so raw
// SQL never interpolates caller input.
func balanceColumn(resource domain.ResourceType) (string, error) {
	switch resource {
	case domain.ResourceProjectVoucher:
		return "project_vouchers", nil
	case domain.ResourceFacilitatorSeat:
		return "facilitator_seats", nil
	case domain.ResourceStorytellerSeat:
		return "storyteller_seats", nil
	default:
		return "", domain.ErrInvalidResource
	}
}

func (r *repo) EnsureWallet(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO wallets (user_id, project_vouchers, facilitator_seats, storyteller_seats, created_at, updated_at)
		 VALUES (?, 0, 0, 0, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
		now,
		now,
	).Error
}

func (r *repo) GetWallet(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, project_vouchers, facilitator_seats, storyteller_seats, created_at, updated_at
		 FROM wallets WHERE user_id = ?`,
		userID,
	).Scan(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.UserID == 0 {
		return nil, nil
	}
	return &wallet, nil
}

func (r *repo) ConsumeBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, resource domain.ResourceType, amount uint, now time.Time) (bool, error) {
	column, err := balanceColumn(resource)
	if err != nil {
		return false, err
	}

	// The decrement is conditional on sufficient balance at commit time;
	// a plain read-then-write pair would race.
	result := db.WithContext(ctx).Exec(
		fmt.Sprintf(
			`UPDATE wallets SET %s = %s - ?, updated_at = ? WHERE user_id = ? AND %s >= ?`,
			column, column, column,
		),
		amount,
		now,
		userID,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) GrantBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, resource domain.ResourceType, amount uint, now time.Time) error {
	column, err := balanceColumn(resource)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).Exec(
		fmt.Sprintf(
			`UPDATE wallets SET %s = %s + ?, updated_at = ? WHERE user_id = ?`,
			column, column,
		),
		amount,
		now,
		userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("wallet row missing for grant")
	}
	return nil
}

func (r *repo) ApplyStarterGrant(ctx context.Context, db *gorm.DB, userID snowflake.ID, vouchers, facilitatorSeats, storytellerSeats uint, now time.Time) (bool, error) {
	// Compare-and-swap on the all-zero predicate so concurrent callers
	// cannot both apply the grant.
	result := db.WithContext(ctx).Exec(
		`UPDATE wallets
		 SET project_vouchers = ?, facilitator_seats = ?, storyteller_seats = ?, updated_at = ?
		 WHERE user_id = ?
		   AND project_vouchers = 0 AND facilitator_seats = 0 AND storyteller_seats = 0`,
		vouchers,
		facilitatorSeats,
		storytellerSeats,
		now,
		userID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *domain.SeatTransaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO seat_transactions (id, user_id, transaction_type, resource_type, amount, related_project_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.UserID,
		txn.TransactionType,
		txn.ResourceType,
		txn.Amount,
		txn.RelatedProjectID,
		txn.Metadata,
		txn.CreatedAt,
	).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, userID snowflake.ID, cursor *pagination.Cursor, limit int) ([]*domain.SeatTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	// Snowflake ids carry the timestamp, so ordering by id alone is newest
	// first and gives a stable keyset cursor.
	query := db.WithContext(ctx).
		Model(&domain.SeatTransaction{}).
		Where("user_id = ?", userID)
	if cursor != nil && cursor.ID != "" {
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		query = query.Where("id < ?", afterID)
	}

	var txns []*domain.SeatTransaction
	err := query.
		Order("id desc").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
