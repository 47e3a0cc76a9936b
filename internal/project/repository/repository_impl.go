package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/permission"
	"github.com/heirloomlabs/heirloom/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertProject(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO projects (id, owner_id, name, slug, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.OwnerID,
		project.Name,
		project.Slug,
		project.CreatedAt,
		project.UpdatedAt,
	).Error
}

func (r *repo) FindProject(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, name, slug, created_at, updated_at
		 FROM projects WHERE id = ?`,
		id,
	).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == 0 {
		return nil, nil
	}
	return &project, nil
}

func (r *repo) InsertRole(ctx context.Context, db *gorm.DB, role *domain.ProjectRole) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO project_roles (id, project_id, user_id, role, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		role.ID,
		role.ProjectID,
		role.UserID,
		role.Role,
		role.Status,
		role.CreatedAt,
		role.UpdatedAt,
	).Error
}

func (r *repo) HasActiveRole(ctx context.Context, db *gorm.DB, projectID, userID snowflake.ID, role permission.Role) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ProjectRole{}).
		Where("project_id = ? AND user_id = ? AND role = ? AND status = ?", projectID, userID, role, domain.RoleActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindActiveRole(ctx context.Context, db *gorm.DB, projectID, userID snowflake.ID) (*domain.ProjectRole, error) {
	var role domain.ProjectRole
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, user_id, role, status, created_at, updated_at
		 FROM project_roles
		 WHERE project_id = ? AND user_id = ? AND status = ?
		 ORDER BY created_at ASC LIMIT 1`,
		projectID,
		userID,
		domain.RoleActive,
	).Scan(&role).Error
	if err != nil {
		return nil, err
	}
	if role.ID == 0 {
		return nil, nil
	}
	return &role, nil
}
