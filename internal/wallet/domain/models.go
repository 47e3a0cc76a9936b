package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ResourceType is one of the three purchasable capacity kinds.
type ResourceType string

const (
	ResourceProjectVoucher  ResourceType = "project_voucher"
	ResourceFacilitatorSeat ResourceType = "facilitator_seat"
	ResourceStorytellerSeat ResourceType = "storyteller_seat"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceProjectVoucher, ResourceFacilitatorSeat, ResourceStorytellerSeat:
		return true
	default:
		return false
	}
}

type TransactionType string

const (
	TransactionGrant   TransactionType = "grant"
	TransactionConsume TransactionType = "consume"
)

// Wallet holds one user's balances. Counters never go negative; every
// mutation is guarded at the storage layer.
type Wallet struct {
	UserID           snowflake.ID `gorm:"primaryKey;column:user_id" json:"user_id"`
	ProjectVouchers  uint         `gorm:"not null;default:0" json:"project_vouchers"`
	FacilitatorSeats uint         `gorm:"not null;default:0" json:"facilitator_seats"`
	StorytellerSeats uint         `gorm:"not null;default:0" json:"storyteller_seats"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Wallet) TableName() string { return "wallets" }

func (w Wallet) Balance(resource ResourceType) uint {
	switch resource {
	case ResourceProjectVoucher:
		return w.ProjectVouchers
	case ResourceFacilitatorSeat:
		return w.FacilitatorSeats
	case ResourceStorytellerSeat:
		return w.StorytellerSeats
	default:
		return 0
	}
}

// AllZero reports whether every counter is zero. Used by the bootstrap
// grant predicate; see service.ConditionalBootstrapGrant.
func (w Wallet) AllZero() bool {
	return w.ProjectVouchers == 0 && w.FacilitatorSeats == 0 && w.StorytellerSeats == 0
}

// SeatTransaction is one immutable ledger entry. Append-only; one row per
// wallet mutation.
type SeatTransaction struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID      `gorm:"not null;index" json:"user_id"`
	TransactionType  TransactionType   `gorm:"type:text;not null" json:"transaction_type"`
	ResourceType     ResourceType      `gorm:"type:text;not null" json:"resource_type"`
	Amount           uint              `gorm:"not null" json:"amount"`
	RelatedProjectID *snowflake.ID     `gorm:"index" json:"related_project_id,omitempty"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SeatTransaction) TableName() string { return "seat_transactions" }

// Metadata carries the known, typed context keys for a ledger entry.
type Metadata struct {
	Reference    string
	InvitationID string
	GrantSource  string
	Note         string
}

func (m Metadata) JSONMap() datatypes.JSONMap {
	out := datatypes.JSONMap{}
	if m.Reference != "" {
		out["reference"] = m.Reference
	}
	if m.InvitationID != "" {
		out["invitation_id"] = m.InvitationID
	}
	if m.GrantSource != "" {
		out["grant_source"] = m.GrantSource
	}
	if m.Note != "" {
		out["note"] = m.Note
	}
	return out
}
