package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/permission"
	"gorm.io/gorm"
)

type Repository interface {
	InsertProject(ctx context.Context, db *gorm.DB, project *Project) error
	FindProject(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Project, error)

	InsertRole(ctx context.Context, db *gorm.DB, role *ProjectRole) error

	// HasActiveRole checks the (project, user, role) tuple that the accept
	// transaction must not duplicate.
	HasActiveRole(ctx context.Context, db *gorm.DB, projectID, userID snowflake.ID, role permission.Role) (bool, error)

	// FindActiveRole returns the user's active role on a project, nil when
	// not a member.
	FindActiveRole(ctx context.Context, db *gorm.DB, projectID, userID snowflake.ID) (*ProjectRole, error)
}
