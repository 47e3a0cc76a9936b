package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"gorm.io/gorm"
)

// Service owns every wallet mutation. No other component writes wallets or
// seat transactions.
type Service interface {
	// GetOrInit returns the wallet, lazily creating a zero-valued row on
	// first access.
	GetOrInit(ctx context.Context, userID snowflake.ID) (*Wallet, error)

	// Consume atomically decrements a counter and appends the matching
	// ledger entry. Returns ErrInsufficientBalance without partial effect
	// when the balance does not cover amount.
	Consume(ctx context.Context, userID snowflake.ID, resource ResourceType, amount uint, relatedProjectID *snowflake.ID, meta Metadata) error

	// ConsumeInTx is Consume running inside a caller-owned transaction, so
	// the invitation accept path can span invitation, membership, wallet
	// and ledger in one atomic unit.
	ConsumeInTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, resource ResourceType, amount uint, relatedProjectID *snowflake.ID, meta Metadata) error

	// Grant atomically increments a counter and appends the matching
	// ledger entry.
	Grant(ctx context.Context, userID snowflake.ID, resource ResourceType, amount uint, relatedProjectID *snowflake.ID, meta Metadata) (*Wallet, error)

	// ConditionalBootstrapGrant applies the starter allotment only if the
	// wallet is currently all-zero, as a compare-and-swap. Reports whether
	// it applied.
	ConditionalBootstrapGrant(ctx context.Context, userID snowflake.ID, vouchers, facilitatorSeats, storytellerSeats uint) (bool, error)

	// ListTransactions pages through the ledger newest first.
	ListTransactions(ctx context.Context, userID snowflake.ID, page pagination.Pagination) ([]*SeatTransaction, pagination.PageInfo, error)
}
