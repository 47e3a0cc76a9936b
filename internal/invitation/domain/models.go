package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/permission"
	walletdomain "github.com/heirloomlabs/heirloom/internal/wallet/domain"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusDeclined, StatusExpired, StatusRevoked:
		return true
	default:
		return false
	}
}

// Invitation is a time-bounded, single-use offer of a role on a project,
// identified by an opaque token.
type Invitation struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	Token        string          `gorm:"uniqueIndex;not null" json:"-"`
	ProjectID    snowflake.ID    `gorm:"not null;index" json:"project_id"`
	InviterID    snowflake.ID    `gorm:"not null;index" json:"inviter_id"`
	InviteeEmail string          `gorm:"not null" json:"invitee_email"`
	Role         permission.Role `gorm:"type:text;not null" json:"role"`
	Status       Status          `gorm:"type:text;not null;default:'pending'" json:"status"`
	ExpiresAt    time.Time       `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "invitations" }

func (i Invitation) ExpiredAt(now time.Time) bool {
	return i.Status == StatusPending && now.After(i.ExpiresAt)
}

// SeatResource maps an invitation role to the wallet resource consumed when
// the invitation is accepted.
func SeatResource(role permission.Role) (walletdomain.ResourceType, error) {
	switch role {
	case permission.RoleFacilitator:
		return walletdomain.ResourceFacilitatorSeat, nil
	case permission.RoleStoryteller:
		return walletdomain.ResourceStorytellerSeat, nil
	default:
		return "", ErrInvalidRole
	}
}

// Acceptance is the successful Accept result.
type Acceptance struct {
	ProjectID snowflake.ID    `json:"project_id"`
	Role      permission.Role `json:"role"`
}
