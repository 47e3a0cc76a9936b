package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/permission"
)

type RoleStatus string

const (
	RoleActive  RoleStatus = "active"
	RoleRemoved RoleStatus = "removed"
)

// Project is a family story collection owned by the user who spent a
// project voucher to create it.
type Project struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID   snowflake.ID `gorm:"not null;index" json:"owner_id"`
	Name      string       `gorm:"not null" json:"name"`
	Slug      string       `gorm:"not null" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// ProjectRole is one member's role on a project. At most one active row per
// (project, user, role) tuple.
type ProjectRole struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID    `gorm:"not null;index" json:"project_id"`
	UserID    snowflake.ID    `gorm:"not null;index" json:"user_id"`
	Role      permission.Role `gorm:"type:text;not null" json:"role"`
	Status    RoleStatus      `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ProjectRole) TableName() string { return "project_roles" }

// Membership is a caller's resolved standing on a project.
type Membership struct {
	Role    permission.Role
	IsOwner bool
}
