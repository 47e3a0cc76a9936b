package notification

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// NotificationEvent is one outbox row awaiting delivery.
type NotificationEvent struct {
	ID          snowflake.ID   `gorm:"primaryKey"`
	RecipientID snowflake.ID   `gorm:"not null;index"`
	EventType   string         `gorm:"type:text;not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	Published   bool           `gorm:"not null;default:false"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (NotificationEvent) TableName() string { return "notification_events" }
