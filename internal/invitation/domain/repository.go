package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invitation *Invitation) error

	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Invitation, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invitation, error)

	// TokenExists backs the token normalizer's candidate probes.
	TokenExists(ctx context.Context, db *gorm.DB, token string) (bool, error)

	// Transition moves an invitation from one status to another as a
	// conditional update guarded by the current status. Reports whether
	// the transition applied; a false return means another caller already
	// resolved the invitation.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, now time.Time) (bool, error)

	ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID, status Status, limit int) ([]*Invitation, error)

	// ExpireOverdue lazily flips pending invitations whose expiry has
	// passed. Returns the number of rows expired.
	ExpireOverdue(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error)
}
