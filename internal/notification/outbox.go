package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type outboxSink struct {
	db    *gorm.DB
	genID *snowflake.Node
}

// NewOutboxSink persists events into notification_events for a downstream
// dispatcher to deliver.
func NewOutboxSink(db *gorm.DB, genID *snowflake.Node) Sink {
	return &outboxSink{
		db:    db,
		genID: genID,
	}
}

type eventPayload struct {
	ProjectID string `json:"project_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
}

func (s *outboxSink) Publish(ctx context.Context, event Event) error {
	if event.RecipientID == 0 {
		return errors.New("missing recipient")
	}
	if event.Type == "" {
		return errors.New("missing event type")
	}

	payload, err := json.Marshal(eventPayload{
		ProjectID: event.ProjectID.String(),
		ActorID:   event.ActorID.String(),
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO notification_events (id, recipient_id, event_type, payload, published, created_at)
		 VALUES (?, ?, ?, ?, false, ?)`,
		s.genID.Generate(),
		event.RecipientID,
		event.Type,
		datatypes.JSON(payload),
		now,
	).Error
}
