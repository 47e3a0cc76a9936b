package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/invitation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const invitationColumns = `id, token, project_id, inviter_id, invitee_email, role, status, expires_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invitation *domain.Invitation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invitations (id, token, project_id, inviter_id, invitee_email, role, status, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invitation.ID,
		invitation.Token,
		invitation.ProjectID,
		invitation.InviterID,
		invitation.InviteeEmail,
		invitation.Role,
		invitation.Status,
		invitation.ExpiresAt,
		invitation.CreatedAt,
		invitation.UpdatedAt,
	).Error
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).Raw(
		`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`,
		token,
	).Scan(&invitation).Error
	if err != nil {
		return nil, err
	}
	if invitation.ID == 0 {
		return nil, nil
	}
	return &invitation, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := db.WithContext(ctx).Raw(
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`,
		id,
	).Scan(&invitation).Error
	if err != nil {
		return nil, err
	}
	if invitation.ID == 0 {
		return nil, nil
	}
	return &invitation, nil
}

func (r *repo) TokenExists(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("token = ?", token).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.Status, now time.Time) (bool, error) {
	// Guarding on the current status makes the transition the uniquely
	// successful operation under concurrency; terminal rows never move.
	result := db.WithContext(ctx).Exec(
		`UPDATE invitations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		now,
		id,
		from,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListByProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID, status domain.Status, limit int) ([]*domain.Invitation, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}

	stmt := db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("project_id = ?", projectID)
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var invitations []*domain.Invitation
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repo) ExpireOverdue(ctx context.Context, db *gorm.DB, now time.Time, limit int) (int64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	result := db.WithContext(ctx).Exec(
		`UPDATE invitations SET status = ?, updated_at = ?
		 WHERE id IN (
			SELECT id FROM invitations
			WHERE status = ? AND expires_at <= ?
			LIMIT ?
		 )`,
		domain.StatusExpired,
		now,
		domain.StatusPending,
		now,
		limit,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
