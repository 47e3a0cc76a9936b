package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository is the storage surface for wallets and the seat ledger. Every
// method takes the gorm handle so callers control the transaction boundary.
type Repository interface {
	// EnsureWallet inserts a zero-valued row if none exists. Safe under
	// concurrent first access.
	EnsureWallet(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) error

	GetWallet(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Wallet, error)

	// ConsumeBalance decrements the resource counter only if the current
	// balance covers amount. Reports whether the decrement applied.
	ConsumeBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, resource ResourceType, amount uint, now time.Time) (bool, error)

	GrantBalance(ctx context.Context, db *gorm.DB, userID snowflake.ID, resource ResourceType, amount uint, now time.Time) error

	// ApplyStarterGrant sets the counters to the grant values only if the
	// row still matches the all-zero predicate at commit time.
	ApplyStarterGrant(ctx context.Context, db *gorm.DB, userID snowflake.ID, vouchers, facilitatorSeats, storytellerSeats uint, now time.Time) (bool, error)

	InsertTransaction(ctx context.Context, db *gorm.DB, txn *SeatTransaction) error

	// ListTransactions returns up to limit ledger entries newest first,
	// starting after the cursor when one is given.
	ListTransactions(ctx context.Context, db *gorm.DB, userID snowflake.ID, cursor *pagination.Cursor, limit int) ([]*SeatTransaction, error)
}
